package domain

import (
	"reflect"
	"testing"
)

func TestSplitSkills(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Go", []string{"Go"}},
		{"Go,MongoDB,Redis", []string{"Go", "MongoDB", "Redis"}},
		// tokens pass through untouched: no trimming, no dedupe
		{"Go, Rust,Go", []string{"Go", " Rust", "Go"}},
		{"Go,,Redis", []string{"Go", "", "Redis"}},
	}

	for _, tt := range tests {
		if got := SplitSkills(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitSkills(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestProfileInputSocialLinks(t *testing.T) {
	tw := "https://twitter.com/johndoe"
	in := ProfileInput{Twitter: &tw}

	s := in.SocialLinks()
	if s.Twitter != tw {
		t.Errorf("twitter = %q, want %q", s.Twitter, tw)
	}
	if s.Youtube != "" || s.Facebook != "" || s.Linkedin != "" || s.Instagram != "" {
		t.Errorf("absent keys must stay empty: %+v", s)
	}
}

func TestUserInfoNilSafe(t *testing.T) {
	var u *User
	info := u.Info()
	if info.Name != "" || info.Avatar != "" {
		t.Errorf("nil user must yield empty projection: %+v", info)
	}

	name := "John Doe"
	u = &User{Name: &name}
	if got := u.Info().Name; got != "John Doe" {
		t.Errorf("name = %q", got)
	}
}
