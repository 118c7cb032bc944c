package images

import (
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSource(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		// Full references pass through
		{"docker.io/library/alpine:latest", "docker.io/library/alpine:latest", false},
		{"ghcr.io/myorg/myapp:v1.0.0", "ghcr.io/myorg/myapp:v1.0.0", false},

		// Shorthand gets expanded
		{"alpine", "docker.io/library/alpine:latest", false},
		{"ubuntu:22.04", "docker.io/library/ubuntu:22.04", false},

		// Digest references keep the digest and get no tag
		{"alpine@sha256:0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", "docker.io/library/alpine@sha256:0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", false},

		// No source at all
		{"", "", false},

		// Invalid
		{"invalid::", "", true},
		{"has spaces", "", true},
		{"UPPERCASE", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeSource(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSource)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		img     Image
		wantErr error
	}{
		{name: "empty record is fine", img: Image{}},
		{
			name: "fully populated",
			img: Image{
				ID:         "img-ubuntu-22.04",
				Name:       "ubuntu",
				Status:     StatusActive,
				SizeBytes:  1024,
				Source:     "ubuntu:22.04",
				Properties: map[string]string{"arch": "x86_64"},
			},
		},
		{name: "bad id", img: Image{ID: "-leading-dash"}, wantErr: ErrInvalidID},
		{name: "id with slash", img: Image{ID: "a/b"}, wantErr: ErrInvalidID},
		{name: "id collides with listing route", img: Image{ID: "detail"}, wantErr: ErrReservedID},
		{name: "id containing reserved word", img: Image{ID: "detail-2"}},
		{name: "unknown status", img: Image{Status: "saving"}, wantErr: ErrInvalidStatus},
		{name: "negative size", img: Image{SizeBytes: -1}, wantErr: ErrInvalidSize},
		{name: "empty property key", img: Image{Properties: map[string]string{"": "x"}}, wantErr: ErrInvalidProperty},
		{name: "long property key", img: Image{Properties: map[string]string{strings.Repeat("k", 256): "x"}}, wantErr: ErrInvalidProperty},
		{name: "bad source", img: Image{Source: "Not A Ref"}, wantErr: ErrInvalidSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.img)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := &Image{Source: "alpine", Properties: map[string]string{"a": "1"}}

	out, err := Normalize(in)
	require.NoError(t, err)
	require.Equal(t, "docker.io/library/alpine:latest", out.Source)

	out.Properties["a"] = "2"
	assert.Equal(t, "alpine", in.Source)
	assert.Equal(t, "1", in.Properties["a"])
}

func TestReservedIDIsInvalidID(t *testing.T) {
	err := ValidateID("detail")
	require.ErrorIs(t, err, ErrReservedID)
	require.ErrorIs(t, err, ErrInvalidID)
	assert.True(t, IsReservedID("detail"))
	assert.False(t, IsReservedID("details"))
}

func TestNormalizeDropsEmptyProperties(t *testing.T) {
	out, err := Normalize(&Image{Name: "x", Properties: map[string]string{}})
	require.NoError(t, err)
	assert.Nil(t, out.Properties)
}

func TestValidateUpdate(t *testing.T) {
	tests := []struct {
		name    string
		upd     Update
		wantErr error
	}{
		{name: "empty update is fine", upd: Update{}},
		{name: "properties only", upd: Update{Properties: map[string]string{"k": "v"}}},
		{name: "unknown status", upd: Update{Status: "saving"}, wantErr: ErrInvalidStatus},
		{name: "negative size", upd: Update{SizeBytes: lo.ToPtr(int64(-5))}, wantErr: ErrInvalidSize},
		{name: "empty property key", upd: Update{Properties: map[string]string{"": "x"}}, wantErr: ErrInvalidProperty},
		{name: "bad source", upd: Update{Source: lo.ToPtr("Not A Ref")}, wantErr: ErrInvalidSource},
		{name: "clearing source", upd: Update{Source: lo.ToPtr("")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpdate(&tt.upd)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeUpdate(t *testing.T) {
	in := &Update{Source: lo.ToPtr("alpine:3.20"), Properties: map[string]string{}}

	out, err := NormalizeUpdate(in)
	require.NoError(t, err)
	assert.Equal(t, "docker.io/library/alpine:3.20", *out.Source)
	assert.Nil(t, out.Properties)
	assert.Equal(t, "alpine:3.20", *in.Source)
	assert.Nil(t, out.Name)
}

func TestUpdateApplyOnlyTouchesPresentFields(t *testing.T) {
	img := &Image{
		Name:       "ubuntu",
		Status:     StatusActive,
		Location:   "swift://images/ubuntu",
		SizeBytes:  2048,
		IsPublic:   true,
		Source:     "docker.io/library/ubuntu:22.04",
		Properties: map[string]string{"arch": "x86_64"},
	}

	(&Update{Properties: map[string]string{"kernel": "6.8"}}).Apply(img)
	assert.Equal(t, "ubuntu", img.Name)
	assert.Equal(t, StatusActive, img.Status)
	assert.Equal(t, "swift://images/ubuntu", img.Location)
	assert.Equal(t, int64(2048), img.SizeBytes)
	assert.True(t, img.IsPublic)
	assert.Equal(t, "docker.io/library/ubuntu:22.04", img.Source)
	assert.Equal(t, map[string]string{"arch": "x86_64", "kernel": "6.8"}, img.Properties)

	(&Update{IsPublic: lo.ToPtr(false), SizeBytes: lo.ToPtr(int64(0))}).Apply(img)
	assert.False(t, img.IsPublic)
	assert.Zero(t, img.SizeBytes)
	assert.Equal(t, "ubuntu", img.Name)
}

func TestUpdateFromSetsEveryField(t *testing.T) {
	img := &Image{Name: "n", Status: StatusQueued, Location: "l", SizeBytes: 1, IsPublic: true, Source: "s"}
	u := UpdateFrom(img)

	target := &Image{Name: "other", Status: StatusActive, SizeBytes: 9, Properties: map[string]string{"k": "v"}}
	u.Apply(target)
	assert.Equal(t, "n", target.Name)
	assert.Equal(t, StatusQueued, target.Status)
	assert.Equal(t, "l", target.Location)
	assert.Equal(t, int64(1), target.SizeBytes)
	assert.True(t, target.IsPublic)
	assert.Equal(t, "s", target.Source)
	assert.Equal(t, map[string]string{"k": "v"}, target.Properties)
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusQueued, StatusActive, StatusDeleted} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("killed").Valid())
	assert.False(t, Status("").Valid())
}
