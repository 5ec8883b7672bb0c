package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) (*Storage, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.pph")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		t.Fatalf("Failed to initialize: %v", err)
	}
	return db, dbPath
}

func testProfile(name string) Profile {
	return Profile{
		Name:       name,
		Salt:       "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff",
		Iterations: 100000,
		Algorithm:  "PBKDF2-HMAC-SHA256+HKDF-SHA256",
		Hints:      map[string]string{"house_name": "Su..."},
		Verifiers:  map[string]string{"medium": "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA"},
		Created:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestOpenAndInitialize(t *testing.T) {
	db, _ := openTestDB(t)
	defer db.Close()

	initialized, err := db.IsInitialized()
	if err != nil {
		t.Fatalf("Failed to check initialization: %v", err)
	}
	if !initialized {
		t.Error("Database should be initialized")
	}

	// Initialize is idempotent
	if err := db.Initialize(); err != nil {
		t.Errorf("Second Initialize failed: %v", err)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	db, _ := openTestDB(t)
	defer db.Close()

	before, err := db.GetModified()
	if err != nil {
		t.Fatalf("Failed to get modified time: %v", err)
	}

	want := testProfile("work")
	if err := db.PutProfile(want); err != nil {
		t.Fatalf("Failed to put profile: %v", err)
	}

	got, err := db.GetProfile("work")
	if err != nil {
		t.Fatalf("Failed to get profile: %v", err)
	}
	if got.Salt != want.Salt || got.Iterations != want.Iterations {
		t.Errorf("Profile mismatch: got %+v", got)
	}
	if got.Hints["house_name"] != "Su..." {
		t.Errorf("Hint mismatch: got %v", got.Hints)
	}
	if got.Verifiers["medium"] != want.Verifiers["medium"] {
		t.Errorf("Verifier mismatch: got %v", got.Verifiers)
	}

	after, err := db.GetModified()
	if err != nil {
		t.Fatalf("Failed to get modified time: %v", err)
	}
	if after.Before(before) {
		t.Error("Modified time should not go backwards")
	}

	salt, err := got.SaltBytes()
	if err != nil || len(salt) != 32 {
		t.Errorf("SaltBytes: got %d bytes, err %v", len(salt), err)
	}
}

func TestGetMissingProfile(t *testing.T) {
	db, _ := openTestDB(t)
	defer db.Close()

	if _, err := db.GetProfile("nope"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}
	if err := db.DeleteProfile("nope"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}
}

func TestListAndDeleteProfiles(t *testing.T) {
	db, _ := openTestDB(t)
	defer db.Close()

	for _, name := range []string{"b", "a", "c"} {
		if err := db.PutProfile(testProfile(name)); err != nil {
			t.Fatalf("Failed to put profile %s: %v", name, err)
		}
	}

	list, err := db.ListProfiles()
	if err != nil {
		t.Fatalf("Failed to list profiles: %v", err)
	}
	if len(list) != 3 || list[0].Name != "a" || list[2].Name != "c" {
		t.Errorf("Unexpected list order: %v", list)
	}

	if err := db.DeleteProfile("b"); err != nil {
		t.Fatalf("Failed to delete profile: %v", err)
	}
	list, err = db.ListProfiles()
	if err != nil {
		t.Fatalf("Failed to list profiles: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 profiles, got %d", len(list))
	}
}

func TestPutProfileRequiresName(t *testing.T) {
	db, _ := openTestDB(t)
	defer db.Close()

	if err := db.PutProfile(Profile{}); err == nil {
		t.Error("Expected error for unnamed profile")
	}
}

func TestPersistence(t *testing.T) {
	db, dbPath := openTestDB(t)
	if err := db.PutProfile(testProfile("home")); err != nil {
		t.Fatalf("Failed to put profile: %v", err)
	}
	db.Close()

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()

	if _, err := db.GetProfile("home"); err != nil {
		t.Errorf("Profile should survive reopen: %v", err)
	}
}

func TestCompact(t *testing.T) {
	db, dbPath := openTestDB(t)
	defer db.Close()

	for i := 0; i < 50; i++ {
		p := testProfile(string(rune('a' + i%26)) + string(rune('a'+i/26)))
		if err := db.PutProfile(p); err != nil {
			t.Fatalf("Failed to put profile: %v", err)
		}
	}
	if err := db.DeleteProfile("aa"); err != nil {
		t.Fatalf("Failed to delete profile: %v", err)
	}

	if err := db.Compact(); err != nil {
		t.Fatalf("Compact failed: %v", err)
	}
	if db.Path() != dbPath {
		t.Errorf("Path changed after compact: %s", db.Path())
	}

	list, err := db.ListProfiles()
	if err != nil {
		t.Fatalf("Failed to list after compact: %v", err)
	}
	if len(list) != 49 {
		t.Errorf("Expected 49 profiles after compact, got %d", len(list))
	}
}
