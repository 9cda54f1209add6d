package user

import (
	"errors"
	"time"
)

// Service enforces the domain rules on top of the repository: email
// uniqueness, the 18-year age gate, birth-date range sanity, and the
// full-replace vs partial-update semantics.
type Service struct {
	repo Repository

	// clock supplies the current time for the age gate and the @Past
	// validator. Dates are evaluated in UTC.
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) GetAllUsers() ([]User, error) {
	return s.repo.FindAll()
}

func (s *Service) GetUser(id int64) (User, error) {
	return s.repo.FindByID(id)
}

func (s *Service) GetUsersByBirthDateRange(from, to Date) ([]User, error) {
	if !to.Time.After(from.Time) {
		return nil, ErrBadRange
	}
	return s.repo.FindByBirthDateBetween(from, to)
}

func (s *Service) CreateUser(candidate User) (User, error) {
	// any client-supplied id is ignored; the store assigns one
	candidate.ID = 0
	if _, err := s.verifyCandidate(0, candidate); err != nil {
		return User{}, err
	}
	if err := candidate.Validate(s.clock()); err != nil {
		return User{}, err
	}

	return s.repo.Save(candidate)
}

// UpdateAllUserInfo replaces the stored record with the candidate, forcing
// the path id.
func (s *Service) UpdateAllUserInfo(id int64, candidate User) (User, error) {
	if _, err := s.verifyCandidate(id, candidate); err != nil {
		return User{}, err
	}

	candidate.ID = id
	if err := candidate.Validate(s.clock()); err != nil {
		return User{}, err
	}

	return s.repo.Save(candidate)
}

// UpdateUserInfo overwrites the six mutable fields of the stored record with
// the candidate's and persists the result.
func (s *Service) UpdateUserInfo(id int64, candidate User) (User, error) {
	existing, err := s.verifyCandidate(id, candidate)
	if err != nil {
		return User{}, err
	}

	existing.FirstName = candidate.FirstName
	existing.LastName = candidate.LastName
	existing.Email = candidate.Email
	existing.DateOfBirth = candidate.DateOfBirth
	existing.Address = candidate.Address
	existing.PhoneNumber = candidate.PhoneNumber

	if err := existing.Validate(s.clock()); err != nil {
		return User{}, err
	}

	return s.repo.Save(existing)
}

func (s *Service) DeleteUser(id int64) error {
	if _, err := s.repo.FindByID(id); err != nil {
		return err
	}
	return s.repo.DeleteByID(id)
}

// verifyCandidate is the validation gate run before every create and update.
// A zero id means "create"; a non-zero id must reference an existing record,
// which is returned for the partial-update merge.
//
// The uniqueness check deliberately rejects any stored email, including the
// one belonging to the record being updated; existing clients depend on that
// response.
func (s *Service) verifyCandidate(id int64, candidate User) (User, error) {
	var existing User
	found := false
	if id != 0 {
		u, err := s.repo.FindByID(id)
		switch {
		case err == nil:
			existing, found = u, true
		case errors.Is(err, ErrNoUser):
			// handled below, after the uniqueness check
		default:
			return User{}, err
		}
	}

	taken, err := s.repo.ExistsByEmail(candidate.Email)
	if err != nil {
		return User{}, err
	}
	if taken {
		return User{}, ErrUserExists
	}
	if id != 0 && !found {
		return User{}, &NotFoundError{ID: id}
	}

	now := truncateToDay(s.clock())
	eighteenYearsAgo := now.AddDate(-18, 0, 0)
	if candidate.DateOfBirth.Time.After(eighteenYearsAgo) {
		return User{}, ErrUnderage
	}

	return existing, nil
}
