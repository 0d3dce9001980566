package cloudinary

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewPhotoStoreRequiresCredentials(t *testing.T) {
	_, err := NewPhotoStore(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)
}

func TestPhotoStoreLocateScopesByTenant(t *testing.T) {
	store := &PhotoStore{folder: "facility/attendance"}

	folder, publicID := store.locate("tenant-1/Site Photo!.JPG")
	require.Equal(t, "facility/attendance/tenant-1", folder)
	require.True(t, strings.HasPrefix(publicID, "Site-Photo-"), publicID)

	_, fallback := store.locate("tenant-1/.png")
	require.True(t, strings.HasPrefix(fallback, "photo-"), fallback)
}
