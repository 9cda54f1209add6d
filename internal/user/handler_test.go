package user

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

// newTestApp builds a fiber app over an in-memory repository. A non-zero
// `now` pins the service clock so age checks are deterministic.
func newTestApp(seed []User, now time.Time) (*fiber.App, *InMemoryRepository) {
	repo := NewInMemoryRepository(seed)
	service := NewService(repo)
	if !now.IsZero() {
		service.clock = func() time.Time { return now }
	}
	handler := NewHandler(service)

	app := fiber.New()
	handler.RegisterRoutes(app)
	return app, repo
}

func seedUsers() []User {
	return []User{
		{ID: 1, FirstName: "John", LastName: "Doe", Email: "john.doe@example.com", DateOfBirth: NewDate(1990, time.January, 1)},
		{ID: 2, FirstName: "Jane", LastName: "Smith", Email: "jane.smith@example.com", DateOfBirth: NewDate(1995, time.February, 15)},
	}
}

func TestGetAllUsers_ReturnsSeededUsersInOrder(t *testing.T) {
	app, _ := newTestApp(seedUsers(), time.Time{})

	res, err := app.Test(httptest.NewRequest("GET", "/users", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected json content type, got %q", ct)
	}

	var users []User
	if err := json.NewDecoder(res.Body).Decode(&users); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].FirstName != "John" || users[1].FirstName != "Jane" {
		t.Fatalf("unexpected order: %+v", users)
	}
	if users[0].DateOfBirth.String() != "1990-01-01" {
		t.Fatalf("unexpected date of birth %q", users[0].DateOfBirth)
	}
}

func TestGetUser_UnknownID(t *testing.T) {
	app, _ := newTestApp(seedUsers(), time.Time{})

	res, err := app.Test(httptest.NewRequest("GET", "/users/10", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected json content type, got %q", ct)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "No user by this id" {
		t.Fatalf("unexpected body %q", string(b))
	}
}

func TestGetUsersByBirthDateRange(t *testing.T) {
	app, _ := newTestApp(seedUsers(), time.Time{})

	// inverted range
	res, err := app.Test(httptest.NewRequest("GET", "/users/range?from=2025-01-01&to=2024-12-31", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "Range can't be equal or less than 0" {
		t.Fatalf("unexpected body %q", string(b))
	}

	// equal bounds fail the same way
	res, err = app.Test(httptest.NewRequest("GET", "/users/range?from=1990-01-01&to=1990-01-01", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for equal bounds, got %d", res.StatusCode)
	}

	// valid range picks up only John
	res, err = app.Test(httptest.NewRequest("GET", "/users/range?from=1989-12-31&to=1990-01-02", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var users []User
	if err := json.NewDecoder(res.Body).Decode(&users); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(users) != 1 || users[0].Email != "john.doe@example.com" {
		t.Fatalf("unexpected range result: %+v", users)
	}
}

func TestCreateUser(t *testing.T) {
	app, repo := newTestApp(nil, time.Time{})

	payload := `{"firstName":"Alice","lastName":"Johnson","email":"alice.johnson@example.com","dateOfBirth":"1992-08-25","address":"789 Oak Street","phoneNumber":"555-9012"}`
	req := httptest.NewRequest("POST", "/users", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		b, _ := io.ReadAll(res.Body)
		t.Fatalf("expected 200, got %d: %s", res.StatusCode, string(b))
	}

	var created User
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id, got %+v", created)
	}
	if created.FirstName != "Alice" || created.Address != "789 Oak Street" || created.DateOfBirth.String() != "1992-08-25" {
		t.Fatalf("record not echoed: %+v", created)
	}

	stored, err := repo.FindByID(created.ID)
	if err != nil || stored != created {
		t.Fatalf("stored record differs: %+v vs %+v (%v)", stored, created, err)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	app, _ := newTestApp(seedUsers(), time.Time{})

	payload := `{"firstName":"John","lastName":"Clone","email":"john.doe@example.com","dateOfBirth":"1990-01-01"}`
	req := httptest.NewRequest("POST", "/users", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "User already created" {
		t.Fatalf("unexpected body %q", string(b))
	}
}

func TestCreateUser_Underage(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	app, _ := newTestApp(nil, now)

	payload := `{"firstName":"Kid","lastName":"Young","email":"kid@example.com","dateOfBirth":"2024-01-01"}`
	req := httptest.NewRequest("POST", "/users", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "User must be 18 years or older" {
		t.Fatalf("unexpected body %q", string(b))
	}
}

func TestCreateUser_ValidationAggregates(t *testing.T) {
	app, _ := newTestApp(nil, time.Time{})

	payload := `{"email":"not-an-email","dateOfBirth":"1990-01-01"}`
	req := httptest.NewRequest("POST", "/users", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "Can't be empty!Can't be empty!Invalid email!" {
		t.Fatalf("unexpected body %q", string(b))
	}
}

func TestUpdateAllUserInfo_UnknownID(t *testing.T) {
	app, _ := newTestApp(seedUsers(), time.Time{})

	payload := `{"firstName":"Ghost","lastName":"User","email":"ghost@example.com","dateOfBirth":"1990-01-01"}`
	req := httptest.NewRequest("PUT", "/users/10", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "User not found with id: 10" {
		t.Fatalf("unexpected body %q", string(b))
	}
}

func TestUpdateUserInfo_OverwritesMutableFields(t *testing.T) {
	app, repo := newTestApp(seedUsers(), time.Time{})

	payload := `{"firstName":"Johnny","lastName":"Doe","email":"johnny.doe@example.com","dateOfBirth":"1990-01-01","address":"12 Elm","phoneNumber":"555-0001"}`
	req := httptest.NewRequest("PATCH", "/users/1", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		b, _ := io.ReadAll(res.Body)
		t.Fatalf("expected 200, got %d: %s", res.StatusCode, string(b))
	}

	stored, err := repo.FindByID(1)
	if err != nil {
		t.Fatalf("lookup after patch: %v", err)
	}
	if stored.ID != 1 || stored.FirstName != "Johnny" || stored.Email != "johnny.doe@example.com" || stored.Address != "12 Elm" {
		t.Fatalf("patch not applied: %+v", stored)
	}
}

func TestDeleteUser(t *testing.T) {
	app, _ := newTestApp(seedUsers(), time.Time{})

	res, err := app.Test(httptest.NewRequest("DELETE", "/users/1", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected json content type, got %q", ct)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "User deleted" {
		t.Fatalf("unexpected body %q", string(b))
	}

	res, err = app.Test(httptest.NewRequest("GET", "/users/1", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 after delete, got %d", res.StatusCode)
	}

	res, err = app.Test(httptest.NewRequest("DELETE", "/users/1", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 on second delete, got %d", res.StatusCode)
	}
}

func TestGetUser_BadID(t *testing.T) {
	app, _ := newTestApp(seedUsers(), time.Time{})

	res, err := app.Test(httptest.NewRequest("GET", "/users/abc", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
}
