package routeguard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		want Class
	}{
		{"/", ClassPublic},
		{"/about", ClassPublic},
		{"/signin", ClassPublicOnly},
		{"/signup/", ClassPublicOnly},
		{"/dashboard", ClassProtected},
		{"/chat/abc123", ClassProtected},
		{"/friends", ClassProtected},
		{"/settings/profile", ClassProtected},
		{"", ClassPublic},
		{"dashboard", ClassProtected},
		// unknown paths default to protected
		{"/some/new/page", ClassProtected},
		{"/chatter", ClassProtected},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Classify(tc.path), "path %q", tc.path)
	}
}

func TestDecide(t *testing.T) {
	require.Equal(t, ActionRedirectLogin, Decide("/dashboard", false))
	require.Equal(t, ActionAllow, Decide("/dashboard", true))

	require.Equal(t, ActionAllow, Decide("/signin", false))
	require.Equal(t, ActionRedirectDashboard, Decide("/signin", true))

	require.Equal(t, ActionAllow, Decide("/about", false))
	require.Equal(t, ActionAllow, Decide("/about", true))

	require.Equal(t, ActionRedirectLogin, Decide("/unknown", false))
}
