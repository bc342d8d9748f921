package rentalsvc

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/waan1232/campus-share-app-sub000/model"
	rentalrepo "github.com/waan1232/campus-share-app-sub000/repository/rental"
)

type mockTx struct {
	listBlocking func(ctx context.Context, itemID, excludeID int64) ([]model.Rental, error)
	insert       func(ctx context.Context, r *model.Rental) error
	getForUpdate func(ctx context.Context, rentalID int64) (*model.Rental, int64, error)
	updateStatus func(ctx context.Context, rentalID int64, status model.RentalStatus) error
}

func (m *mockTx) ListBlocking(ctx context.Context, itemID, excludeID int64) ([]model.Rental, error) {
	return m.listBlocking(ctx, itemID, excludeID)
}
func (m *mockTx) Insert(ctx context.Context, r *model.Rental) error { return m.insert(ctx, r) }
func (m *mockTx) GetForUpdate(ctx context.Context, rentalID int64) (*model.Rental, int64, error) {
	return m.getForUpdate(ctx, rentalID)
}
func (m *mockTx) UpdateStatus(ctx context.Context, rentalID int64, status model.RentalStatus) error {
	return m.updateStatus(ctx, rentalID, status)
}

type mockRepo struct {
	tx           *mockTx
	lockErr      error
	byID         func(ctx context.Context, id int64) (*model.Rental, error)
	itemMeta     func(ctx context.Context, itemID int64) (int64, int64, bool, error)
	listBlocking func(ctx context.Context, itemID, excludeID int64) ([]model.Rental, error)
	listOutgoing func(ctx context.Context, renterID int64) ([]model.RentalRow, error)
	listIncoming func(ctx context.Context, ownerID int64) ([]model.RentalRow, error)
	delete       func(ctx context.Context, id int64) error
	markPaid     func(ctx context.Context, rentalID int64, at time.Time) error
}

func (m *mockRepo) WithItemLock(ctx context.Context, itemID int64, fn func(tx rentalrepo.Tx) error) error {
	if m.lockErr != nil {
		return m.lockErr
	}
	return fn(m.tx)
}
func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.Rental, error) {
	return m.byID(ctx, id)
}
func (m *mockRepo) ItemMeta(ctx context.Context, itemID int64) (int64, int64, bool, error) {
	return m.itemMeta(ctx, itemID)
}
func (m *mockRepo) ListBlocking(ctx context.Context, itemID, excludeID int64) ([]model.Rental, error) {
	return m.listBlocking(ctx, itemID, excludeID)
}
func (m *mockRepo) ListOutgoing(ctx context.Context, renterID int64) ([]model.RentalRow, error) {
	return m.listOutgoing(ctx, renterID)
}
func (m *mockRepo) ListIncoming(ctx context.Context, ownerID int64) ([]model.RentalRow, error) {
	return m.listIncoming(ctx, ownerID)
}
func (m *mockRepo) Delete(ctx context.Context, id int64) error { return m.delete(ctx, id) }
func (m *mockRepo) MarkPaid(ctx context.Context, rentalID int64, at time.Time) error {
	return m.markPaid(ctx, rentalID, at)
}

func d(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := ParseDate(s)
	require.NoError(t, err)
	return tm
}

func TestOverlapsInclusiveDays(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"disjoint before", "2025-06-01", "2025-06-05", "2025-06-06", "2025-06-10", false},
		{"disjoint after", "2025-06-06", "2025-06-10", "2025-06-01", "2025-06-05", false},
		{"shared boundary day", "2025-06-01", "2025-06-05", "2025-06-05", "2025-06-10", true},
		{"partial overlap", "2025-06-01", "2025-06-05", "2025-06-03", "2025-06-07", true},
		{"nested", "2025-06-01", "2025-06-30", "2025-06-10", "2025-06-12", true},
		{"identical", "2025-06-01", "2025-06-05", "2025-06-01", "2025-06-05", true},
		{"single day vs itself", "2025-06-03", "2025-06-03", "2025-06-03", "2025-06-03", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(d(t, tc.aStart), d(t, tc.aEnd), d(t, tc.bStart), d(t, tc.bEnd))
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDayCount(t *testing.T) {
	require.Equal(t, 1, DayCount(d(t, "2025-06-01"), d(t, "2025-06-01")))
	require.Equal(t, 1, DayCount(d(t, "2025-06-01"), d(t, "2025-06-02")))
	require.Equal(t, 4, DayCount(d(t, "2025-06-01"), d(t, "2025-06-05")))
	require.Equal(t, 30, DayCount(d(t, "2025-06-01"), d(t, "2025-07-01")))
}

func repoWithBlocking(blocking []model.Rental) *mockRepo {
	tx := &mockTx{
		listBlocking: func(ctx context.Context, itemID, excludeID int64) ([]model.Rental, error) {
			var out []model.Rental
			for _, b := range blocking {
				if b.ID != excludeID {
					out = append(out, b)
				}
			}
			return out, nil
		},
		insert: func(ctx context.Context, r *model.Rental) error {
			r.ID = 99
			return nil
		},
	}
	return &mockRepo{
		tx: tx,
		itemMeta: func(ctx context.Context, itemID int64) (int64, int64, bool, error) {
			return 1, 1500, true, nil // owner=1
		},
	}
}

func TestRequestRejectsOverlapWithApproved(t *testing.T) {
	approved := model.Rental{
		ID: 7, ItemID: 10, RenterID: 3,
		StartDate: d(t, "2025-06-01"), EndDate: d(t, "2025-06-05"),
		Status: model.RentalApproved,
	}
	svc := New(repoWithBlocking([]model.Rental{approved}))

	_, err := svc.Request(context.Background(), 2, 10, d(t, "2025-06-03"), d(t, "2025-06-07"))
	require.Equal(t, ErrConflict, Code(err))

	// the day after the approved range ends is free
	out, err := svc.Request(context.Background(), 2, 10, d(t, "2025-06-06"), d(t, "2025-06-10"))
	require.NoError(t, err)
	require.Equal(t, model.RentalPending, out.Status)
	require.EqualValues(t, 99, out.ID)
}

func TestRequestPendingDoesNotBlock(t *testing.T) {
	// Repo only returns blocking rows, so a pending rental never appears
	// here; a second overlapping request must succeed.
	svc := New(repoWithBlocking(nil))
	out, err := svc.Request(context.Background(), 2, 10, d(t, "2025-06-01"), d(t, "2025-06-05"))
	require.NoError(t, err)
	require.Equal(t, model.RentalPending, out.Status)
}

func TestRequestValidation(t *testing.T) {
	svc := New(repoWithBlocking(nil))

	_, err := svc.Request(context.Background(), 2, 10, d(t, "2025-06-05"), d(t, "2025-06-01"))
	require.Equal(t, ErrInvalidRange, Code(err))

	// renting your own item
	_, err = svc.Request(context.Background(), 1, 10, d(t, "2025-06-01"), d(t, "2025-06-05"))
	require.Equal(t, ErrOwnItem, Code(err))
}

func TestRequestItemNotFound(t *testing.T) {
	repo := &mockRepo{
		itemMeta: func(ctx context.Context, itemID int64) (int64, int64, bool, error) {
			return 0, 0, false, sql.ErrNoRows
		},
	}
	_, err := New(repo).Request(context.Background(), 2, 404, d(t, "2025-06-01"), d(t, "2025-06-05"))
	require.Equal(t, ErrItemNotFound, Code(err))
}

func TestRequestDelistedItem(t *testing.T) {
	repo := repoWithBlocking(nil)
	repo.itemMeta = func(ctx context.Context, itemID int64) (int64, int64, bool, error) {
		return 1, 1500, false, nil
	}
	_, err := New(repo).Request(context.Background(), 2, 10, d(t, "2025-06-01"), d(t, "2025-06-05"))
	require.Equal(t, ErrItemDelisted, Code(err))
}

func TestBlockOwnerOnly(t *testing.T) {
	repo := repoWithBlocking(nil)
	svc := New(repo)

	_, err := svc.Block(context.Background(), 2, 10, d(t, "2025-07-01"), d(t, "2025-07-10"))
	require.Equal(t, ErrNotOwner, Code(err))

	out, err := svc.Block(context.Background(), 1, 10, d(t, "2025-07-01"), d(t, "2025-07-10"))
	require.NoError(t, err)
	require.Equal(t, model.UnavailableBlock, out.Status)
	require.EqualValues(t, 1, out.RenterID)
}

func TestBlockConflictsWithApproved(t *testing.T) {
	approved := model.Rental{
		ID: 7, ItemID: 10, RenterID: 3,
		StartDate: d(t, "2025-07-05"), EndDate: d(t, "2025-07-08"),
		Status: model.RentalApproved,
	}
	svc := New(repoWithBlocking([]model.Rental{approved}))
	_, err := svc.Block(context.Background(), 1, 10, d(t, "2025-07-01"), d(t, "2025-07-10"))
	require.Equal(t, ErrConflict, Code(err))
}

func TestOwnerBlockRejectsOverlappingRequest(t *testing.T) {
	block := model.Rental{
		ID: 9, ItemID: 10, RenterID: 1, // renter_id = owner id
		StartDate: d(t, "2025-07-01"), EndDate: d(t, "2025-07-03"),
		Status: model.UnavailableBlock,
	}
	svc := New(repoWithBlocking([]model.Rental{block}))

	_, err := svc.Request(context.Background(), 2, 10, d(t, "2025-07-02"), d(t, "2025-07-04"))
	require.Equal(t, ErrConflict, Code(err))

	out, err := svc.Request(context.Background(), 2, 10, d(t, "2025-07-04"), d(t, "2025-07-06"))
	require.NoError(t, err)
	require.Equal(t, model.RentalPending, out.Status)
}

func TestBlockCreationIsSerializedPerItem(t *testing.T) {
	// Two blocking inserts for overlapping ranges run through the same
	// locked check-then-insert section; the store sees the first insert
	// before the second check, so exactly one wins.
	var store []model.Rental
	tx := &mockTx{
		listBlocking: func(ctx context.Context, itemID, excludeID int64) ([]model.Rental, error) {
			return store, nil
		},
		insert: func(ctx context.Context, r *model.Rental) error {
			r.ID = int64(len(store) + 1)
			store = append(store, *r)
			return nil
		},
	}
	repo := &mockRepo{
		tx: tx,
		itemMeta: func(ctx context.Context, itemID int64) (int64, int64, bool, error) {
			return 1, 1500, true, nil
		},
	}
	svc := New(repo)

	_, err := svc.Block(context.Background(), 1, 10, d(t, "2025-07-01"), d(t, "2025-07-05"))
	require.NoError(t, err)

	_, err = svc.Block(context.Background(), 1, 10, d(t, "2025-07-04"), d(t, "2025-07-08"))
	require.Equal(t, ErrConflict, Code(err))
	require.Len(t, store, 1)
}

func TestExclusionViolationMapsToConflict(t *testing.T) {
	repo := repoWithBlocking(nil)
	repo.lockErr = &pgconn.PgError{Code: pgerrcode.ExclusionViolation}
	_, err := New(repo).Request(context.Background(), 2, 10, d(t, "2025-06-01"), d(t, "2025-06-05"))
	require.Equal(t, ErrConflict, Code(err))
}

func TestLegalTransitions(t *testing.T) {
	cases := []struct {
		from, to model.RentalStatus
		ok       bool
	}{
		{model.RentalPending, model.RentalApproved, true},
		{model.RentalPending, model.RentalRejected, true},
		{model.RentalPending, model.RentalCompleted, false},
		{model.RentalApproved, model.RentalCompleted, true},
		{model.RentalApproved, model.RentalRejected, false},
		{model.RentalRejected, model.RentalApproved, false},
		{model.RentalCompleted, model.RentalApproved, false},
		{model.UnavailableBlock, model.RentalApproved, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.ok, legalTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func transitionRepo(t *testing.T, current model.Rental, ownerID int64, blocking []model.Rental) *mockRepo {
	t.Helper()
	tx := &mockTx{
		getForUpdate: func(ctx context.Context, rentalID int64) (*model.Rental, int64, error) {
			c := current
			return &c, ownerID, nil
		},
		listBlocking: func(ctx context.Context, itemID, excludeID int64) ([]model.Rental, error) {
			var out []model.Rental
			for _, b := range blocking {
				if b.ID != excludeID {
					out = append(out, b)
				}
			}
			return out, nil
		},
		updateStatus: func(ctx context.Context, rentalID int64, status model.RentalStatus) error {
			return nil
		},
	}
	return &mockRepo{
		tx: tx,
		byID: func(ctx context.Context, id int64) (*model.Rental, error) {
			c := current
			return &c, nil
		},
	}
}

func TestTransitionApprove(t *testing.T) {
	pending := model.Rental{
		ID: 5, ItemID: 10, RenterID: 2,
		StartDate: d(t, "2025-06-01"), EndDate: d(t, "2025-06-05"),
		Status: model.RentalPending,
	}
	repo := transitionRepo(t, pending, 1, nil)
	out, err := New(repo).Transition(context.Background(), 1, 5, model.RentalApproved)
	require.NoError(t, err)
	require.Equal(t, model.RentalApproved, out.Status)
}

func TestTransitionApproveLosesRace(t *testing.T) {
	// Another rental got approved for an overlapping range while this one
	// sat pending. Approval must fail, not double-book.
	pending := model.Rental{
		ID: 5, ItemID: 10, RenterID: 2,
		StartDate: d(t, "2025-06-01"), EndDate: d(t, "2025-06-05"),
		Status: model.RentalPending,
	}
	winner := model.Rental{
		ID: 6, ItemID: 10, RenterID: 3,
		StartDate: d(t, "2025-06-04"), EndDate: d(t, "2025-06-08"),
		Status: model.RentalApproved,
	}
	repo := transitionRepo(t, pending, 1, []model.Rental{winner})
	_, err := New(repo).Transition(context.Background(), 1, 5, model.RentalApproved)
	require.Equal(t, ErrConflict, Code(err))
}

func TestTransitionOwnerOnly(t *testing.T) {
	pending := model.Rental{ID: 5, ItemID: 10, RenterID: 2, Status: model.RentalPending}
	repo := transitionRepo(t, pending, 1, nil)
	_, err := New(repo).Transition(context.Background(), 2, 5, model.RentalApproved)
	require.Equal(t, ErrNotOwner, Code(err))
}

func TestTransitionIllegal(t *testing.T) {
	completed := model.Rental{ID: 5, ItemID: 10, RenterID: 2, Status: model.RentalCompleted}
	repo := transitionRepo(t, completed, 1, nil)
	_, err := New(repo).Transition(context.Background(), 1, 5, model.RentalApproved)
	require.Equal(t, ErrInvalidTransition, Code(err))

	// pending and unavailable_block are never valid targets
	pending := model.Rental{ID: 5, ItemID: 10, RenterID: 2, Status: model.RentalPending}
	repo = transitionRepo(t, pending, 1, nil)
	_, err = New(repo).Transition(context.Background(), 1, 5, model.RentalPending)
	require.Equal(t, ErrInvalidTransition, Code(err))
	_, err = New(repo).Transition(context.Background(), 1, 5, model.UnavailableBlock)
	require.Equal(t, ErrInvalidTransition, Code(err))
	_, err = New(repo).Transition(context.Background(), 1, 5, model.RentalStatus("bogus"))
	require.Equal(t, ErrInvalidTransition, Code(err))
}

func TestTransitionNotFound(t *testing.T) {
	repo := &mockRepo{
		byID: func(ctx context.Context, id int64) (*model.Rental, error) {
			return nil, sql.ErrNoRows
		},
	}
	_, err := New(repo).Transition(context.Background(), 1, 404, model.RentalApproved)
	require.Equal(t, ErrRentalNotFound, Code(err))
}

func TestDeleteBlockOnly(t *testing.T) {
	deleted := int64(0)
	block := model.Rental{ID: 8, ItemID: 10, RenterID: 1, Status: model.UnavailableBlock}
	repo := &mockRepo{
		byID: func(ctx context.Context, id int64) (*model.Rental, error) {
			b := block
			return &b, nil
		},
		itemMeta: func(ctx context.Context, itemID int64) (int64, int64, bool, error) {
			return 1, 1500, true, nil
		},
		delete: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}
	svc := New(repo)

	require.NoError(t, svc.Delete(context.Background(), 1, 8))
	require.EqualValues(t, 8, deleted)

	// non-owner
	err := svc.Delete(context.Background(), 2, 8)
	require.Equal(t, ErrNotOwner, Code(err))

	// approved rentals are not deletable
	block.Status = model.RentalApproved
	err = svc.Delete(context.Background(), 1, 8)
	require.Equal(t, ErrNotDeletable, Code(err))
}

func TestIsRangeAvailable(t *testing.T) {
	approved := model.Rental{
		ID: 7, ItemID: 10,
		StartDate: d(t, "2025-06-01"), EndDate: d(t, "2025-06-05"),
		Status: model.RentalApproved,
	}
	repo := &mockRepo{
		listBlocking: func(ctx context.Context, itemID, excludeID int64) ([]model.Rental, error) {
			if approved.ID == excludeID {
				return nil, nil
			}
			return []model.Rental{approved}, nil
		},
	}
	svc := New(repo)

	ok, err := svc.IsRangeAvailable(context.Background(), 10, d(t, "2025-06-03"), d(t, "2025-06-07"), 0)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = svc.IsRangeAvailable(context.Background(), 10, d(t, "2025-06-06"), d(t, "2025-06-10"), 0)
	require.NoError(t, err)
	require.True(t, ok)

	// excluding the blocking row itself frees the range
	ok, err = svc.IsRangeAvailable(context.Background(), 10, d(t, "2025-06-03"), d(t, "2025-06-07"), 7)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.IsRangeAvailable(context.Background(), 10, d(t, "2025-06-07"), d(t, "2025-06-03"), 0)
	require.Equal(t, ErrInvalidRange, Code(err))
}

func TestListMine(t *testing.T) {
	repo := &mockRepo{
		listOutgoing: func(ctx context.Context, renterID int64) ([]model.RentalRow, error) {
			return []model.RentalRow{{ItemTitle: "drill"}}, nil
		},
		listIncoming: func(ctx context.Context, ownerID int64) ([]model.RentalRow, error) {
			return nil, nil
		},
	}
	out, err := New(repo).ListMine(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, out.Outgoing, 1)
	require.Empty(t, out.Incoming)
}
