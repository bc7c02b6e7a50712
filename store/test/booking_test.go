package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/agenda/store"
)

func TestBookingStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	base := time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local)
	for i, name := range []string{"Ana", "Luis", "Marta"} {
		_, err := ts.CreateBooking(ctx, &store.Booking{
			UID:       "booking-" + name,
			SessionID: "session-1",
			Name:      name,
			StartTs:   base.Add(time.Duration(2-i) * time.Hour).Unix(),
		})
		require.NoError(t, err)
	}

	list, err := ts.ListBookings(ctx, &store.FindBooking{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	// Ordered by start time.
	require.Equal(t, "Marta", list[0].Name)
	require.Equal(t, "Ana", list[2].Name)
	require.Equal(t, store.Normal, list[0].RowStatus)
	require.NotZero(t, list[0].CreatedTs)

	from, to := base.Add(30*time.Minute).Unix(), base.Add(2*time.Hour).Unix()
	ranged, err := ts.ListBookings(ctx, &store.FindBooking{StartTsFrom: &from, StartTsTo: &to})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	require.Equal(t, "Luis", ranged[0].Name)

	uid := "booking-Luis"
	booking, err := ts.GetBooking(ctx, &store.FindBooking{UID: &uid})
	require.NoError(t, err)
	require.NotNil(t, booking)
	require.Equal(t, base.Add(time.Hour).Unix(), booking.StartTime().Unix())

	archived := store.Archived
	require.NoError(t, ts.UpdateBooking(ctx, &store.UpdateBooking{ID: booking.ID, RowStatus: &archived}))

	normal := store.Normal
	active, err := ts.ListBookings(ctx, &store.FindBooking{RowStatus: &normal})
	require.NoError(t, err)
	require.Len(t, active, 2)

	missing := "booking-nobody"
	booking, err = ts.GetBooking(ctx, &store.FindBooking{UID: &missing})
	require.NoError(t, err)
	require.Nil(t, booking)
}

func TestBookingStoreDuplicateUID(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	create := func() error {
		_, err := ts.CreateBooking(ctx, &store.Booking{UID: "same", StartTs: time.Now().Unix()})
		return err
	}
	require.NoError(t, create())
	require.Error(t, create())
}
