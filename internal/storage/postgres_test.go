package storage

import "testing"

func TestEscapeLikePrefix(t *testing.T) {
	cases := []struct{ in, want string }{
		{"credential:u1:", "credential:u1:"},
		{"credential:a_c:", `credential:a\_c:`},
		{"credential:50%off:", `credential:50\%off:`},
		{`credential:back\slash:`, `credential:back\\slash:`},
		{"credential:a_b%c:", `credential:a\_b\%c:`},
		{"", ""},
	}
	for _, c := range cases {
		if got := escapeLikePrefix(c.in); got != c.want {
			t.Errorf("escapeLikePrefix(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
