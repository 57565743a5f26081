// Package catalog manages what the hotel sells: room categories, their rooms,
// discounts, tags and photos.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"hotelcore/internal/domain"
	"hotelcore/internal/modules/availability"
	"hotelcore/internal/pkg/filestore"
	"hotelcore/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
	FamiliarLimit  = 3

	photoDir    = "categories"
	discountDir = "discounts"
)

var sortFields = map[string]bool{"": true, "id": true, "name": true, "price": true, "square": true, "beds": true}

// FileStore keeps uploaded images. filestore.Local is the production implementation.
type FileStore interface {
	Store(r io.Reader, dir string) (string, error)
	Delete(relPath string) error
}

type Service struct {
	store *repository.Store
	files FileStore
	log   *logrus.Logger
	now   func() time.Time
}

func NewService(store *repository.Store, files FileStore, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Service{store: store, files: files, log: log, now: time.Now}
}

/* ---------- CATEGORIES ---------- */

func (s *Service) CreateCategory(ctx context.Context, req CategoryRequest) (*domain.Category, error) {
	c := &domain.Category{}
	req.apply(c)
	if err := domain.ValidateCategory(c); err != nil {
		return nil, err
	}
	if err := s.store.Categories.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.WithField("category_id", c.ID).Info("category created")
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, req CategoryRequest) (*domain.Category, error) {
	var out *domain.Category
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		c, err := tx.Categories.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		req.apply(c)
		if err := domain.ValidateCategory(c); err != nil {
			return err
		}
		out = c
		return tx.Categories.Update(ctx, c)
	})
	return out, err
}

// GetCategory returns a category with its tags and photos. Hidden categories
// are reported as missing unless includeHidden.
func (s *Service) GetCategory(ctx context.Context, id int64, includeHidden bool) (*domain.Category, error) {
	c, err := s.store.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsHidden && !includeHidden {
		return nil, fmt.Errorf("%w: category %d", domain.ErrNotFound, id)
	}
	return c, nil
}

// DeleteCategory soft-deletes the category and its rooms and removes its photos.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	var files []string
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		c, err := tx.Categories.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		photos, err := tx.Photos.ListByCategory(ctx, id)
		if err != nil {
			return err
		}

		at := s.now().UTC()
		if err := tx.Categories.SoftDelete(ctx, id, at); err != nil {
			return err
		}
		if _, err := tx.Rooms.SoftDeleteByCategory(ctx, id, at); err != nil {
			return err
		}
		if err := tx.Photos.DeleteByCategory(ctx, id); err != nil {
			return err
		}

		files = files[:0]
		for _, p := range photos {
			files = append(files, p.Path)
		}
		if c.MainPhotoPath != "" {
			files = append(files, c.MainPhotoPath)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.removeFiles(files)
	s.log.WithFields(logrus.Fields{"category_id": id, "files": len(files)}).Info("category deleted")
	return nil
}

// Search lists visible categories page by page. When both free dates are
// set only categories with a room free for the whole stay are returned.
func (s *Service) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PerPage == 0 {
		p.PerPage = DefaultPerPage
	}
	if p.Page < 1 {
		return nil, domain.InvalidField("page", "must be >= 1")
	}
	if p.PerPage < 1 || p.PerPage > MaxPerPage {
		return nil, domain.InvalidField("per_page", fmt.Sprintf("must be between 1 and %d", MaxPerPage))
	}
	if !sortFields[p.SortBy] {
		return nil, domain.InvalidField("sort", "unknown sort field")
	}
	if p.MinPrice != nil && p.MaxPrice != nil && p.MinPrice.GreaterThan(*p.MaxPrice) {
		return nil, domain.InvalidField("max_price", "must not be below min_price")
	}

	f := repository.CategoryFilter{
		Name:          strings.TrimSpace(p.Name),
		MinPrice:      p.MinPrice,
		MaxPrice:      p.MaxPrice,
		MinBeds:       p.MinBeds,
		IncludeHidden: p.IncludeHidden,
		SortBy:        p.SortBy,
		Desc:          p.Desc,
	}

	if (p.FreeFrom == nil) != (p.FreeTo == nil) {
		return nil, domain.InvalidField("free_to", "free_from and free_to go together")
	}
	if p.FreeFrom != nil {
		free, err := s.freeCategoryIDs(ctx, f, *p.FreeFrom, *p.FreeTo)
		if err != nil {
			return nil, err
		}
		f.OnlyIDs = free
	}

	f.Page, f.PerPage = p.Page, p.PerPage
	cats, total, err := s.store.Categories.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	return &SearchResult{
		Categories: cats,
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      total,
		TotalPages: int((total + int64(p.PerPage) - 1) / int64(p.PerPage)),
	}, nil
}

func (s *Service) freeCategoryIDs(ctx context.Context, f repository.CategoryFilter, from, to time.Time) ([]int64, error) {
	from, to = domain.Day(from), domain.Day(to)
	if !from.Before(to) {
		return nil, domain.InvalidField("free_to", "must be after free_from")
	}
	if domain.Nights(from, to) > availability.MaxRangeDays {
		return nil, domain.InvalidField("free_to", fmt.Sprintf("range must not exceed %d days", availability.MaxRangeDays))
	}

	ids, err := s.store.Categories.MatchingIDs(ctx, f)
	if err != nil {
		return nil, err
	}
	resolver := availability.NewResolver(s.store)
	free := make([]int64, 0, len(ids))
	for _, id := range ids {
		ok, err := resolver.HasFreeRoom(ctx, id, from, to)
		if err != nil {
			return nil, err
		}
		if ok {
			free = append(free, id)
		}
	}
	return free, nil
}

// Familiar returns up to three visible categories sharing the most tags with id.
func (s *Service) Familiar(ctx context.Context, id int64) ([]domain.Category, error) {
	if _, err := s.store.Categories.GetByID(ctx, id); err != nil {
		return nil, err
	}
	out, err := s.store.Categories.Familiar(ctx, id, FamiliarLimit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Category{}
	}
	return out, nil
}

/* ---------- ROOMS ---------- */

// CreateRoom adds a room to a category. A zero number picks the next free one;
// a number already used by another room is a conflict.
func (s *Service) CreateRoom(ctx context.Context, categoryID int64, number int) (*domain.Room, error) {
	var room *domain.Room
	err := s.store.WithRetry(ctx, func(tx *repository.Store) error {
		if _, err := tx.Categories.GetForUpdate(ctx, categoryID); err != nil {
			return err
		}
		r := &domain.Room{CategoryID: categoryID, RoomNumber: number}
		if err := s.assignNumber(ctx, tx, r); err != nil {
			return err
		}
		if err := tx.Rooms.Create(ctx, r); err != nil {
			return err
		}
		room = r
		return nil
	}, repository.Serializable())
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"room_id": room.ID, "room_number": room.RoomNumber}).Info("room created")
	return room, nil
}

func (s *Service) UpdateRoom(ctx context.Context, id int64, req RoomRequest) (*domain.Room, error) {
	var room *domain.Room
	err := s.store.WithRetry(ctx, func(tx *repository.Store) error {
		r, err := tx.Rooms.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if req.CategoryID != 0 && req.CategoryID != r.CategoryID {
			if _, err := tx.Categories.GetForUpdate(ctx, req.CategoryID); err != nil {
				return err
			}
			r.CategoryID = req.CategoryID
		}
		r.RoomNumber = req.RoomNumber
		if err := s.assignNumber(ctx, tx, r); err != nil {
			return err
		}
		room = r
		return tx.Rooms.Update(ctx, r)
	}, repository.Serializable())
	return room, err
}

func (s *Service) assignNumber(ctx context.Context, tx *repository.Store, r *domain.Room) error {
	if err := domain.ValidateRoom(r); err != nil {
		return err
	}
	if r.RoomNumber == 0 {
		next, err := tx.Rooms.NextNumber(ctx)
		if err != nil {
			return err
		}
		r.RoomNumber = next
		return nil
	}
	taken, err := tx.Rooms.NumberTaken(ctx, r.RoomNumber, r.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: room number %d is already used", domain.ErrConflict, r.RoomNumber)
	}
	return nil
}

func (s *Service) ListRooms(ctx context.Context, categoryID int64) ([]domain.Room, error) {
	if _, err := s.store.Categories.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.store.Rooms.ListByCategory(ctx, categoryID)
}

// DeleteRoom soft-deletes a room. Its bookings stay as they are.
func (s *Service) DeleteRoom(ctx context.Context, id int64) error {
	return s.store.Rooms.SoftDelete(ctx, id, s.now().UTC())
}

/* ---------- DISCOUNTS ---------- */

func (s *Service) CreateDiscount(ctx context.Context, req DiscountRequest) (*domain.Discount, error) {
	start, err := domain.ParseDay(req.StartDate)
	if err != nil {
		return nil, domain.InvalidField("start_date", "must be formatted as YYYY-MM-DD")
	}
	end, err := domain.ParseDay(req.EndDate)
	if err != nil {
		return nil, domain.InvalidField("end_date", "must be formatted as YYYY-MM-DD")
	}
	d := &domain.Discount{
		Name:        req.Name,
		Description: req.Description,
		Percent:     req.Percent,
		StartDate:   start,
		EndDate:     end,
	}
	if err := domain.ValidateDiscount(d); err != nil {
		return nil, err
	}
	if err := s.store.Discounts.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SetDiscountImage stores the banner image of a discount, replacing any previous one.
func (s *Service) SetDiscountImage(ctx context.Context, id int64, r io.Reader) (*domain.Discount, error) {
	d, err := s.store.Discounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	path, err := s.storeFile(r, discountDir)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.UpdateWhere(ctx, &domain.Discount{}, map[string]any{"image_path": path}, "id = ?", id); err != nil {
		s.removeFiles([]string{path})
		return nil, err
	}
	s.removeFiles([]string{d.ImagePath})
	d.ImagePath = path
	return d, nil
}

func (s *Service) ListActiveDiscounts(ctx context.Context) ([]domain.Discount, error) {
	return s.store.Discounts.ListActive(ctx, s.now())
}

func (s *Service) DeleteDiscount(ctx context.Context, id int64) error {
	return s.store.Discounts.SoftDelete(ctx, id, s.now().UTC())
}

func (s *Service) AttachDiscount(ctx context.Context, categoryID, discountID int64) error {
	return s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Categories.GetForUpdate(ctx, categoryID); err != nil {
			return err
		}
		if _, err := tx.Discounts.GetByID(ctx, discountID); err != nil {
			return err
		}
		return tx.Categories.AttachDiscount(ctx, categoryID, discountID)
	})
}

func (s *Service) DetachDiscount(ctx context.Context, categoryID, discountID int64) error {
	return s.store.Categories.DetachDiscount(ctx, categoryID, discountID)
}

/* ---------- TAGS ---------- */

func (s *Service) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	t := &domain.Tag{Name: strings.TrimSpace(name)}
	if t.Name == "" {
		return nil, domain.InvalidField("name", "is required")
	}
	if err := s.store.Tags.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) AttachTag(ctx context.Context, categoryID, tagID int64) error {
	return s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Categories.GetForUpdate(ctx, categoryID); err != nil {
			return err
		}
		if _, err := tx.Tags.GetByID(ctx, tagID); err != nil {
			return err
		}
		return tx.Categories.AttachTag(ctx, categoryID, tagID)
	})
}

func (s *Service) DetachTag(ctx context.Context, categoryID, tagID int64) error {
	return s.store.Categories.DetachTag(ctx, categoryID, tagID)
}

/* ---------- PHOTOS ---------- */

// AddPhoto stores an image and appends it after the category's last photo.
func (s *Service) AddPhoto(ctx context.Context, categoryID int64, r io.Reader) (*domain.Photo, error) {
	if _, err := s.store.Categories.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	path, err := s.storeFile(r, photoDir)
	if err != nil {
		return nil, err
	}

	var photo *domain.Photo
	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Categories.GetForUpdate(ctx, categoryID); err != nil {
			return err
		}
		pos, err := tx.Photos.NextPosition(ctx, categoryID)
		if err != nil {
			return err
		}
		p := &domain.Photo{CategoryID: categoryID, Path: path, Position: pos}
		if err := tx.Photos.Create(ctx, p); err != nil {
			return err
		}
		photo = p
		return nil
	})
	if err != nil {
		s.removeFiles([]string{path})
		return nil, err
	}
	return photo, nil
}

// DeletePhoto removes a photo and closes the gap in the ordering.
func (s *Service) DeletePhoto(ctx context.Context, photoID int64) error {
	var path string
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		p, err := tx.Photos.GetByID(ctx, photoID)
		if err != nil {
			return err
		}
		if _, err := tx.Categories.GetForUpdate(ctx, p.CategoryID); err != nil {
			return err
		}
		if err := tx.Photos.Delete(ctx, p.ID); err != nil {
			return err
		}
		path = p.Path
		return tx.Photos.ShiftDown(ctx, p.CategoryID, p.Position)
	})
	if err != nil {
		return err
	}
	s.removeFiles([]string{path})
	return nil
}

// ReorderPhoto moves a photo to position (1-based) and renumbers the rest of
// the category's photos densely.
func (s *Service) ReorderPhoto(ctx context.Context, photoID int64, position int) ([]domain.Photo, error) {
	var out []domain.Photo
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		p, err := tx.Photos.GetByID(ctx, photoID)
		if err != nil {
			return err
		}
		if _, err := tx.Categories.GetForUpdate(ctx, p.CategoryID); err != nil {
			return err
		}
		photos, err := tx.Photos.ListByCategory(ctx, p.CategoryID)
		if err != nil {
			return err
		}
		if position < 1 || position > len(photos) {
			return domain.InvalidField("order", fmt.Sprintf("must be between 1 and %d", len(photos)))
		}

		ordered := make([]domain.Photo, 0, len(photos))
		var moved domain.Photo
		for _, ph := range photos {
			if ph.ID == photoID {
				moved = ph
				continue
			}
			ordered = append(ordered, ph)
		}
		ordered = append(ordered[:position-1], append([]domain.Photo{moved}, ordered[position-1:]...)...)

		for i := range ordered {
			want := i + 1
			if ordered[i].Position == want {
				continue
			}
			if err := tx.Photos.SetPosition(ctx, ordered[i].ID, want); err != nil {
				return err
			}
			ordered[i].Position = want
		}
		out = ordered
		return nil
	})
	return out, err
}

func (s *Service) storeFile(r io.Reader, dir string) (string, error) {
	path, err := s.files.Store(r, dir)
	if err != nil {
		switch {
		case errors.Is(err, filestore.ErrEmptyFile),
			errors.Is(err, filestore.ErrFileTooLarge),
			errors.Is(err, filestore.ErrInvalidMimeType):
			return "", domain.InvalidField("file", err.Error())
		}
		return "", err
	}
	return path, nil
}

func (s *Service) removeFiles(paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := s.files.Delete(p); err != nil {
			s.log.WithError(err).WithField("path", p).Warn("media file not removed")
		}
	}
}
