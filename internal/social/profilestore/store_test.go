package profilestore

import "testing"

func TestToProfile(t *testing.T) {
	p := toProfile(UserProfile{UserID: "u1", Name: "alice", Profile: "a.png"})
	if p.Name != "alice" || p.Profile != "a.png" {
		t.Fatalf("unexpected profile %+v", p)
	}
	if (UserProfile{}).TableName() != "profiles" {
		t.Fatalf("unexpected table name")
	}
}
