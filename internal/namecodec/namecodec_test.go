package namecodec

import "testing"

func TestToStoreTitle(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		want string
	}{
		{"foo.md", "foo"},
		{"foo", "foo"},
		{"a.b.md", "a.b"},
		{".md", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := ToStoreTitle(c.name); got != c.want {
			t.Errorf("ToStoreTitle(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestToUserName(t *testing.T) {
	t.Parallel()
	cases := []struct {
		title string
		want  string
	}{
		{"foo", "foo.md"},
		{"foo.md", "foo.md"},
		{"", ".md"},
	}
	for _, c := range cases {
		if got := ToUserName(c.title); got != c.want {
			t.Errorf("ToUserName(%q) = %q, want %q", c.title, got, c.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	names := []string{"foo.md", "foo", "report.2024.md", "x"}
	for _, name := range names {
		got := ToUserName(ToStoreTitle(name))
		if got != name && got != name+".md" {
			t.Errorf("ToUserName(ToStoreTitle(%q)) = %q, want %q or %q", name, got, name, name+".md")
		}
	}

	// A title that already ends in ".md" is shown unchanged, and the
	// lookup side then strips that suffix, so it does not come back as
	// itself.
	titles := []struct {
		title string
		want  string
	}{
		{"foo", "foo"},
		{"foo.md", "foo"},
		{"bar baz", "bar baz"},
	}
	for _, c := range titles {
		if got := ToStoreTitle(ToUserName(c.title)); got != c.want {
			t.Errorf("ToStoreTitle(ToUserName(%q)) = %q, want %q", c.title, got, c.want)
		}
	}
}
