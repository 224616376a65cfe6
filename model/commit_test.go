package model

import "testing"

func TestCommit(t *testing.T) {
	cmt := &Commit{ID: "deadbeefdeadbeef"}
	short := cmt.ShortID()
	expect := "deadbeef"
	if short != expect {
		t.Fatal("expected", expect, "got", short)
	}
}

func TestCommitShortID(t *testing.T) {
	cmt := &Commit{ID: "abc"}
	if short := cmt.ShortID(); short != "abc" {
		t.Fatal("expected short ids to pass through, got", short)
	}
}
