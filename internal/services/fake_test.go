package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"matrimony-backend/internal/cache"
	"matrimony-backend/internal/models"
	"matrimony-backend/internal/repository"
)

// memStore is an in-memory store with transactional rollback
type memStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	profiles map[string]*models.Profile
	photos   map[string][]*models.Photo
	pending  map[string]*models.PendingFieldUpdate

	failReplace error
	failUpdate  error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*models.User{},
		profiles: map[string]*models.Profile{},
		photos:   map[string][]*models.Photo{},
		pending:  map[string]*models.PendingFieldUpdate{},
	}
}

func notFoundErr(what string) error {
	return fmt.Errorf("%s not found: %w", what, repository.ErrNotFound)
}

func clonePhotos(in []*models.Photo) []*models.Photo {
	out := make([]*models.Photo, len(in))
	for i, p := range in {
		cp := *p
		out[i] = &cp
	}
	return out
}

type snapshot struct {
	profiles map[string]*models.Profile
	photos   map[string][]*models.Photo
	pending  map[string]*models.PendingFieldUpdate
}

func (s *memStore) snapshot() snapshot {
	snap := snapshot{
		profiles: map[string]*models.Profile{},
		photos:   map[string][]*models.Photo{},
		pending:  map[string]*models.PendingFieldUpdate{},
	}
	for k, v := range s.profiles {
		cp := *v
		snap.profiles[k] = &cp
	}
	for k, v := range s.photos {
		snap.photos[k] = clonePhotos(v)
	}
	for k, v := range s.pending {
		cp := *v
		snap.pending[k] = &cp
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.profiles, s.photos, s.pending = snap.profiles, snap.photos, snap.pending
}

// InTx runs fn with the store locked and restores the previous state when fn fails
func (s *memStore) InTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(memTx{s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) getProfile(userID string) (*models.Profile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, notFoundErr("profile")
	}
	cp := *p
	cp.Photos = clonePhotos(s.photos[p.ID])
	return &cp, nil
}

func (s *memStore) listPending(userID string) []*models.PendingFieldUpdate {
	out := []*models.PendingFieldUpdate{}
	for _, u := range s.pending {
		if userID != "" && u.UserID != userID {
			continue
		}
		if u.Approved {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func (s *memStore) GetProfileByUserID(_ context.Context, userID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getProfile(userID)
}

func (s *memStore) CreateProfile(_ context.Context, p *models.Profile) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.UserID]; ok {
		return false, nil
	}
	cp := *p
	cp.Photos = nil
	s.profiles[p.UserID] = &cp
	return true, nil
}

func (s *memStore) ListPendingByUser(_ context.Context, userID string) ([]*models.PendingFieldUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listPending(userID), nil
}

func (s *memStore) ListUnapproved(_ context.Context, limit, offset int) ([]*models.PendingFieldUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.listPending("")
	if offset > len(all) {
		return []*models.PendingFieldUpdate{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *memStore) pendingCount(userID, field string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.pending {
		if u.UserID == userID && u.Field == field {
			n++
		}
	}
	return n
}

func (s *memStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, notFoundErr("user")
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) GetUserByUID(_ context.Context, uid string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.UID == uid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFoundErr("user")
}

func (s *memStore) CreateUser(_ context.Context, user *models.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.UID == user.UID {
			return false, nil
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return true, nil
}

func (s *memStore) UpdateUserLogin(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return notFoundErr("user")
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memStore) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return notFoundErr("user")
	}
	u.PushToken = pushToken
	return nil
}

// memTx operates on a store whose lock is already held
type memTx struct {
	s *memStore
}

func (t memTx) LockProfileByUserID(_ context.Context, userID string) (*models.Profile, error) {
	return t.s.getProfile(userID)
}

func (t memTx) UpdateProfile(_ context.Context, p *models.Profile) error {
	if t.s.failUpdate != nil {
		return t.s.failUpdate
	}
	if _, ok := t.s.profiles[p.UserID]; !ok {
		return notFoundErr("profile")
	}
	cp := *p
	cp.Photos = nil
	t.s.profiles[p.UserID] = &cp
	return nil
}

func (t memTx) ListPhotos(_ context.Context, profileID string) ([]*models.Photo, error) {
	return clonePhotos(t.s.photos[profileID]), nil
}

func (t memTx) ReplacePhotos(_ context.Context, profileID string, photos []*models.Photo) error {
	delete(t.s.photos, profileID)
	if t.s.failReplace != nil {
		return t.s.failReplace
	}
	t.s.photos[profileID] = clonePhotos(photos)
	return nil
}

func (t memTx) ListPendingByUser(_ context.Context, userID string) ([]*models.PendingFieldUpdate, error) {
	return t.s.listPending(userID), nil
}

func (t memTx) UpsertPending(_ context.Context, u *models.PendingFieldUpdate) error {
	for _, existing := range t.s.pending {
		if existing.UserID == u.UserID && existing.Field == u.Field && !existing.Approved {
			existing.Value = u.Value
			existing.UpdatedAt = u.UpdatedAt
			return nil
		}
	}
	cp := *u
	t.s.pending[u.ID] = &cp
	return nil
}

func (t memTx) DeletePendingField(_ context.Context, userID, field string) error {
	for id, u := range t.s.pending {
		if u.UserID == userID && u.Field == field && !u.Approved {
			delete(t.s.pending, id)
		}
	}
	return nil
}

func (t memTx) LockPending(_ context.Context, id string) (*models.PendingFieldUpdate, error) {
	u, ok := t.s.pending[id]
	if !ok || u.Approved {
		return nil, notFoundErr("pending update")
	}
	cp := *u
	return &cp, nil
}

func (t memTx) DeletePending(_ context.Context, id string) error {
	if _, ok := t.s.pending[id]; !ok {
		return notFoundErr("pending update")
	}
	delete(t.s.pending, id)
	return nil
}

// memBlobs records blob operations
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failPut bool
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

func (b *memBlobs) Put(_ context.Context, key string, body []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failPut {
		return fmt.Errorf("put %s: unavailable", key)
	}
	b.objects[key] = body
	return nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *memBlobs) URL(_ context.Context, key string) (string, error) {
	return "https://photos.example.com/" + key, nil
}

// memCache is a StatusCache backed by a map
type memCache struct {
	mu   sync.Mutex
	data map[string]cache.Status
}

func newMemCache() *memCache {
	return &memCache{data: map[string]cache.Status{}}
}

func (c *memCache) Get(_ context.Context, userID string) (*cache.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.data[userID]
	if !ok {
		return nil, cache.ErrMiss
	}
	return &st, nil
}

func (c *memCache) Set(_ context.Context, userID string, status cache.Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[userID] = status
	return nil
}

func (c *memCache) Delete(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, userID)
	return nil
}

type sentMessage struct {
	userID string
	msg    WSMessage
	alert  *PushNotification
}

// recordingNotifier keeps every notification
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *recordingNotifier) Notify(_ context.Context, userID string, msg WSMessage, alert *PushNotification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{userID: userID, msg: msg, alert: alert})
}

func (n *recordingNotifier) ofType(t string) []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentMessage
	for _, m := range n.sent {
		if m.msg.Type == t {
			out = append(out, m)
		}
	}
	return out
}
