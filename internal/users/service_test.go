package users

import (
	"context"
	"testing"

	"buslane/internal/shared/faults"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*User
}

func newFakeUserRepo(seed ...*User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*User)}
	for _, user := range seed {
		repo.users[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, faults.NotFound("user")
	}
	return user, nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	var found []User
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			found = append(found, *user)
		}
	}
	return found, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]User, error) {
	var all []User
	for _, user := range f.users {
		all = append(all, *user)
	}
	return all, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return faults.NotFound("user")
	}
	delete(f.users, id)
	return nil
}

type recordingSink struct {
	deletedEmails []string
}

func (r *recordingSink) UserDeleted(ctx context.Context, email string) {
	r.deletedEmails = append(r.deletedEmails, email)
}

func TestDisplayNames(t *testing.T) {
	awa := &User{ID: uuid.New(), FirstName: "Awa", LastName: "Diop", Email: "awa@example.com"}
	svc := NewService(newFakeUserRepo(awa))

	deleted := uuid.New()
	names, err := svc.DisplayNames(context.Background(), []uuid.UUID{awa.ID, deleted})
	require.NoError(t, err)

	assert.Equal(t, "Awa Diop", names[awa.ID])
	// Deleted accounts resolve to a placeholder, never an error.
	assert.Equal(t, "unknown", names[deleted])
}

func TestDeleteUser_NotifiesSink(t *testing.T) {
	moussa := &User{ID: uuid.New(), FirstName: "Moussa", LastName: "Ndiaye", Email: "moussa@example.com"}
	repo := newFakeUserRepo(moussa)
	svc := NewService(repo)
	sink := &recordingSink{}
	svc.SetActivitySink(sink)
	ctx := context.Background()

	require.NoError(t, svc.DeleteUser(ctx, moussa.ID))
	assert.Equal(t, []string{"moussa@example.com"}, sink.deletedEmails)

	err := svc.DeleteUser(ctx, moussa.ID)
	assert.True(t, faults.Is(err, faults.KindNotFound))
	assert.Len(t, sink.deletedEmails, 1)
}
