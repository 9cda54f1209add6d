package user

import (
	"sort"
	"sync"
)

// Repository is the persistence capability for users. It owns no business
// rules; implementations surface ErrNoUser for missing rows and wrap store
// faults in StoreError.
type Repository interface {
	FindAll() ([]User, error)
	FindByID(id int64) (User, error)
	ExistsByEmail(email string) (bool, error)
	// FindByBirthDateBetween returns users born within the closed interval
	// [from, to].
	FindByBirthDateBetween(from, to Date) ([]User, error)
	// Save inserts when the id is zero and returns the record with the
	// assigned id; otherwise it upserts by primary key.
	Save(u User) (User, error)
	DeleteByID(id int64) error
}

// InMemoryRepository keeps users in a slice guarded by a mutex. It backs the
// handler and service tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	users  []User
	nextID int64
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{
		users:  make([]User, 0, len(seed)),
		nextID: 1,
	}

	var maxID int64
	for _, u := range seed {
		repo.users = append(repo.users, u)
		if u.ID > maxID {
			maxID = u.ID
		}
	}

	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) FindAll() ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, len(r.users))
	copy(users, r.users)
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *InMemoryRepository) FindByID(id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}

	return User{}, ErrNoUser
}

func (r *InMemoryRepository) ExistsByEmail(email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}

	return false, nil
}

func (r *InMemoryRepository) FindByBirthDateBetween(from, to Date) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0)
	for _, u := range r.users {
		dob := u.DateOfBirth.Time
		if !dob.Before(from.Time) && !dob.After(to.Time) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *InMemoryRepository) Save(u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
		r.users = append(r.users, u)
		return u, nil
	}

	for i, existing := range r.users {
		if existing.ID == u.ID {
			r.users[i] = u
			return u, nil
		}
	}

	// upsert: id set but row absent
	if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
	r.users = append(r.users, u)
	return u, nil
}

func (r *InMemoryRepository) DeleteByID(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}

	return ErrNoUser
}
