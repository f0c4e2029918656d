package review

import (
	"context"
	"errors"
	"testing"

	"bookly-service/internal/domain/book"
	"bookly-service/internal/domain/review"
	"bookly-service/internal/domain/user"
	xerrors "bookly-service/internal/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memReviews struct {
	items map[uuid.UUID]review.Review
}

func (m *memReviews) Create(_ context.Context, rv *review.Review) error {
	m.items[rv.UID] = *rv
	return nil
}

func (m *memReviews) FindByUID(_ context.Context, uid uuid.UUID) (*review.Review, error) {
	rv, ok := m.items[uid]
	if !ok {
		return nil, xerrors.ErrReviewNotFound
	}
	return &rv, nil
}

func (m *memReviews) Delete(_ context.Context, uid uuid.UUID) error {
	if _, ok := m.items[uid]; !ok {
		return xerrors.ErrReviewNotFound
	}
	delete(m.items, uid)
	return nil
}

func (m *memReviews) ListAll(context.Context) ([]review.Review, error) {
	out := []review.Review{}
	for _, rv := range m.items {
		out = append(out, rv)
	}
	return out, nil
}

func (m *memReviews) ListByBook(_ context.Context, bookUID uuid.UUID) ([]review.Review, error) {
	out := []review.Review{}
	for _, rv := range m.items {
		if rv.BookUID != nil && *rv.BookUID == bookUID {
			out = append(out, rv)
		}
	}
	return out, nil
}

type memBooks map[uuid.UUID]*book.Book

func (m memBooks) FindByUID(_ context.Context, uid uuid.UUID) (*book.Book, error) {
	b, ok := m[uid]
	if !ok {
		return nil, xerrors.ErrBookNotFound
	}
	return b, nil
}

type notification struct {
	to    string
	title string
}

type recordingNotifier struct {
	sent []notification
}

func (n *recordingNotifier) ReviewCreated(submitterUID string, _ *review.Review, bookTitle string) {
	n.sent = append(n.sent, notification{submitterUID, bookTitle})
}

type fixture struct {
	svc      *ReviewService
	notifier *recordingNotifier
	book     *book.Book
	owner    *user.User
	reader   *user.User
}

func newFixture() *fixture {
	owner := &user.User{UID: uuid.New(), Role: "user", IsVerified: true}
	reader := &user.User{UID: uuid.New(), Role: "user", IsVerified: true}
	b := &book.Book{UID: uuid.New(), UserUID: &owner.UID, Title: "Dune"}

	notifier := &recordingNotifier{}
	svc := NewReviewService(
		&memReviews{items: make(map[uuid.UUID]review.Review)},
		memBooks{b.UID: b},
		notifier,
		zap.NewNop(),
	)
	return &fixture{svc: svc, notifier: notifier, book: b, owner: owner, reader: reader}
}

func TestAddReviewNotifiesSubmitter(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rv, err := f.svc.AddReview(ctx, f.reader, f.book.UID, &review.CreateReviewRequest{Rating: 4, ReviewText: "great"})
	if err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	if *rv.UserUID != f.reader.UID || *rv.BookUID != f.book.UID {
		t.Errorf("review links = %v / %v", rv.UserUID, rv.BookUID)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].to != f.owner.UID.String() {
		t.Fatalf("notifications = %+v", f.notifier.sent)
	}

	// reviewing your own book does not notify yourself
	if _, err := f.svc.AddReview(ctx, f.owner, f.book.UID, &review.CreateReviewRequest{Rating: 5, ReviewText: "mine"}); err != nil {
		t.Fatalf("AddReview own: %v", err)
	}
	if len(f.notifier.sent) != 1 {
		t.Errorf("self review notified submitter")
	}

	list, err := f.svc.ListBookReviews(ctx, f.book.UID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListBookReviews = %d, %v", len(list), err)
	}
}

func TestAddReviewValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.AddReview(ctx, f.reader, f.book.UID, &review.CreateReviewRequest{Rating: 6}); !errors.Is(err, xerrors.ErrBadRequest) {
		t.Errorf("rating 6 err = %v", err)
	}
	if _, err := f.svc.AddReview(ctx, f.reader, uuid.New(), &review.CreateReviewRequest{Rating: 3}); !errors.Is(err, xerrors.ErrBookNotFound) {
		t.Errorf("missing book err = %v", err)
	}
	if _, err := f.svc.ListBookReviews(ctx, uuid.New()); !errors.Is(err, xerrors.ErrBookNotFound) {
		t.Errorf("ListBookReviews missing book err = %v", err)
	}
}

func TestDeleteReviewOnlyByAuthor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rv, err := f.svc.AddReview(ctx, f.reader, f.book.UID, &review.CreateReviewRequest{Rating: 2, ReviewText: "meh"})
	if err != nil {
		t.Fatalf("AddReview: %v", err)
	}

	if err := f.svc.DeleteReview(ctx, f.owner, rv.UID); !errors.Is(err, xerrors.ErrForbidden) {
		t.Fatalf("non-author delete err = %v, want ErrForbidden", err)
	}
	if err := f.svc.DeleteReview(ctx, f.reader, rv.UID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if _, err := f.svc.GetReview(ctx, rv.UID); !errors.Is(err, xerrors.ErrReviewNotFound) {
		t.Fatalf("GetReview after delete err = %v", err)
	}
	if err := f.svc.DeleteReview(ctx, f.reader, rv.UID); !errors.Is(err, xerrors.ErrReviewNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}
