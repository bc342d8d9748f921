package catalogsvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/waan1232/campus-share-app-sub000/model"
	itemrepo "github.com/waan1232/campus-share-app-sub000/repository/item"
	userrepo "github.com/waan1232/campus-share-app-sub000/repository/user"
)

type ErrCode string

const (
	ErrItemNotFound ErrCode = "ITEM_NOT_FOUND"
	ErrNotOwner     ErrCode = "NOT_OWNER"
	ErrBadInput     ErrCode = "BAD_INPUT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	Create(ctx context.Context, ownerID int64, req model.CreateItemReq) (*model.Item, error)
	Update(ctx context.Context, actorID, itemID int64, req model.UpdateItemReq) (*model.Item, error)
	Delete(ctx context.Context, actorID, itemID int64) error
	Get(ctx context.Context, viewerID, itemID int64) (*model.Item, error)

	// ListVisible is the school silo boundary: an unknown, unverified, or
	// school-less viewer sees an empty catalog, and items never cross
	// schools whatever the filters say.
	ListVisible(ctx context.Context, viewerID int64, f model.ItemFilter) ([]model.Item, error)
	ListOwn(ctx context.Context, ownerID int64) ([]model.Item, error)
}

type service struct {
	ir itemrepo.Repo
	ur userrepo.Repo
}

func New(ir itemrepo.Repo, ur userrepo.Repo) Service { return &service{ir: ir, ur: ur} }

func (s *service) Create(ctx context.Context, ownerID int64, req model.CreateItemReq) (*model.Item, error) {
	it := &model.Item{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Condition:   req.Condition,
		Location:    req.Location,
		PricePerDay: req.PricePerDay,
		ImageURL:    req.ImageURL,
		IsAvailable: true,
	}
	if err := s.ir.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) Update(ctx context.Context, actorID, itemID int64, req model.UpdateItemReq) (*model.Item, error) {
	it, err := s.ir.ByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrItemNotFound)
		}
		return nil, err
	}
	if it.OwnerID != actorID {
		return nil, makeErr(ErrNotOwner)
	}

	if req.Title != nil {
		it.Title = *req.Title
	}
	if req.Description != nil {
		it.Description = *req.Description
	}
	if req.Category != nil {
		it.Category = *req.Category
	}
	if req.Condition != nil {
		it.Condition = *req.Condition
	}
	if req.Location != nil {
		it.Location = *req.Location
	}
	if req.PricePerDay != nil {
		if *req.PricePerDay <= 0 {
			return nil, makeErr(ErrBadInput)
		}
		it.PricePerDay = *req.PricePerDay
	}
	if req.ImageURL != nil {
		it.ImageURL = *req.ImageURL
	}
	if req.IsAvailable != nil {
		it.IsAvailable = *req.IsAvailable
	}

	if err := s.ir.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) Delete(ctx context.Context, actorID, itemID int64) error {
	it, err := s.ir.ByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrItemNotFound)
		}
		return err
	}
	if it.OwnerID != actorID {
		return makeErr(ErrNotOwner)
	}
	return s.ir.Delete(ctx, itemID)
}

// viewer loads the acting user; a missing row reads as no viewer, not an error.
func (s *service) viewer(ctx context.Context, viewerID int64) *model.User {
	if viewerID <= 0 {
		return nil
	}
	u, err := s.ur.ByID(ctx, viewerID)
	if err != nil {
		return nil
	}
	return u
}

func canBrowse(viewer *model.User) bool {
	return viewer != nil && viewer.IsVerified && viewer.School != ""
}

func (s *service) Get(ctx context.Context, viewerID, itemID int64) (*model.Item, error) {
	it, err := s.ir.ByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrItemNotFound)
		}
		return nil, err
	}
	if it.OwnerID == viewerID {
		return it, nil
	}
	// Same silo rules as the listing, including for direct lookups.
	v := s.viewer(ctx, viewerID)
	if !canBrowse(v) || !it.IsAvailable {
		return nil, makeErr(ErrItemNotFound)
	}
	school, err := s.ir.OwnerSchool(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if school != v.School {
		return nil, makeErr(ErrItemNotFound)
	}
	return it, nil
}

func (s *service) ListVisible(ctx context.Context, viewerID int64, f model.ItemFilter) ([]model.Item, error) {
	v := s.viewer(ctx, viewerID)
	if !canBrowse(v) {
		return []model.Item{}, nil
	}
	items, err := s.ir.ListVisible(ctx, v.School, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

func (s *service) ListOwn(ctx context.Context, ownerID int64) ([]model.Item, error) {
	items, err := s.ir.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}
