package registryapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/onkernel/imgreg/lib/images"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageConversionPreservesFields(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	in := &images.Image{
		ID:         "abc",
		Name:       "ubuntu",
		Status:     images.StatusActive,
		Location:   "file:///var/lib/images/abc",
		SizeBytes:  42,
		IsPublic:   true,
		Source:     "docker.io/library/ubuntu:22.04",
		Properties: map[string]string{"arch": "x86_64"},
		CreatedAt:  created,
		UpdatedAt:  &updated,
	}

	out := FromImage(in).ToImage()
	assert.Equal(t, in, out)

	// Properties are copied, not shared
	out.Properties["arch"] = "arm64"
	assert.Equal(t, "x86_64", in.Properties["arch"])
}

func TestFromImageOmitsZeroCreatedAt(t *testing.T) {
	wire := FromImage(&images.Image{Name: "x"})
	assert.Nil(t, wire.CreatedAt)
	assert.Nil(t, wire.Properties)
}

func TestEmptyPropertiesBecomeNil(t *testing.T) {
	out := FromImage(&images.Image{Name: "x", Properties: map[string]string{}}).ToImage()
	assert.Nil(t, out.Properties)
}

func TestImageUpdateOmitsAbsentFields(t *testing.T) {
	data, err := json.Marshal(FromUpdate(&images.Update{Properties: map[string]string{"k": "v"}}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"properties":{"k":"v"}}`, string(data))

	// Explicit zero values are still sent
	data, err = json.Marshal(FromUpdate(&images.Update{IsPublic: lo.ToPtr(false), SizeBytes: lo.ToPtr(int64(0))}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"is_public":false,"size":0}`, string(data))
}

func TestImageUpdateDecodesPresence(t *testing.T) {
	var wire ImageUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"name":"renamed","is_public":false}`), &wire))

	u := wire.ToUpdate()
	require.NotNil(t, u.Name)
	assert.Equal(t, "renamed", *u.Name)
	require.NotNil(t, u.IsPublic)
	assert.False(t, *u.IsPublic)
	assert.Nil(t, u.SizeBytes)
	assert.Nil(t, u.Location)
	assert.Nil(t, u.Source)
	assert.Empty(t, u.Status)
}

func TestSummaryConversion(t *testing.T) {
	img := &images.Image{ID: "id1", Name: "n", SizeBytes: 7, Status: images.StatusQueued}
	got := FromSummary(img.Summarize()).ToSummary()
	require.Equal(t, img.Summarize(), got)
}

func TestImagePathEscapes(t *testing.T) {
	assert.Equal(t, "/images/abc", ImagePath("abc"))
	assert.Equal(t, "/images/a%2Fb", ImagePath("a/b"))
}
