package listing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/consignd/internal/listing"
)

func TestListing_Available(t *testing.T) {
	tests := []struct {
		name string
		l    listing.Listing
		want bool
	}{
		{name: "Active", l: listing.Listing{Status: listing.StatusActive}, want: true},
		{name: "Processing", l: listing.Listing{Status: listing.StatusProcessing, IsHeld: true}, want: false},
		{name: "Sold", l: listing.Listing{Status: listing.StatusSold, IsHeld: true}, want: false},
		{name: "ActiveButHeld", l: listing.Listing{Status: listing.StatusActive, IsHeld: true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.l.Available())
		})
	}
}

// Values returned by store accessors are not addressable.
func TestListing_MethodsOnValues(t *testing.T) {
	get := func() listing.Listing {
		return listing.Listing{ItemID: "L001", Status: listing.StatusActive}
	}

	assert.True(t, get().Available())
	assert.NoError(t, get().CheckInvariant())
}

func TestListing_CheckInvariant(t *testing.T) {
	until := time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC)

	tests := []struct {
		name    string
		l       listing.Listing
		wantErr bool
	}{
		{name: "Active", l: listing.Listing{Status: listing.StatusActive}},
		{name: "Processing", l: listing.Listing{Status: listing.StatusProcessing, IsHeld: true, HeldUntil: &until}},
		{name: "Sold", l: listing.Listing{Status: listing.StatusSold, IsHeld: true}},
		{name: "ActiveHeld", l: listing.Listing{Status: listing.StatusActive, IsHeld: true}, wantErr: true},
		{name: "ProcessingWithoutExpiry", l: listing.Listing{Status: listing.StatusProcessing, IsHeld: true}, wantErr: true},
		{name: "SoldWithExpiry", l: listing.Listing{Status: listing.StatusSold, IsHeld: true, HeldUntil: &until}, wantErr: true},
		{name: "UnknownStatus", l: listing.Listing{Status: "gone"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.l.CheckInvariant()
			if tt.wantErr {
				assert.ErrorIs(t, err, listing.ErrInvariant)
				return
			}

			assert.NoError(t, err)
		})
	}
}
