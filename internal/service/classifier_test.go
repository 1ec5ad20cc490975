package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/concert-ticket-reservation/internal/repository"
)

var testStatuses = repository.SeatStatusSet{
	Available: 1,
	InCart:    2,
	Reserved:  3,
	Occupied:  4,
}

func noneHeld(uint64) (bool, error) { return false, nil }

func row(id, seatID uint64, seatNumber uint32, statusID uint64) repository.ConcertSeatRow {
	return repository.ConcertSeatRow{ID: id, SeatID: seatID, SeatNumber: seatNumber, StatusID: statusID}
}

func TestClassifyRowsAvailableSeatIsAllocatable(t *testing.T) {
	rows := []repository.ConcertSeatRow{row(10, 100, 1, testStatuses.Available)}

	result, err := classifyRows(rows, testStatuses, noneHeld)

	assert.NoError(t, err)
	assert.Equal(t, []AllocatableSeat{{SeatID: 100, ConcertSeatID: 10, SeatNumber: 1}}, result.Allocatable)
	assert.Empty(t, result.Blocked)
	assert.Empty(t, result.Warnings)
}

func TestClassifyRowsInCartSeatIsAllocatableWithWarning(t *testing.T) {
	rows := []repository.ConcertSeatRow{row(11, 101, 2, testStatuses.InCart)}

	result, err := classifyRows(rows, testStatuses, noneHeld)

	assert.NoError(t, err)
	assert.Len(t, result.Allocatable, 1)
	assert.Equal(t, uint64(101), result.Allocatable[0].SeatID)
	assert.Empty(t, result.Blocked)
	assert.Len(t, result.Warnings, 1)
	assert.Equal(t, warnInCart, result.Warnings[0].Message)
}

func TestClassifyRowsReservedByOtherUserIsBlocked(t *testing.T) {
	rows := []repository.ConcertSeatRow{row(12, 102, 3, testStatuses.Reserved)}

	result, err := classifyRows(rows, testStatuses, noneHeld)

	assert.NoError(t, err)
	assert.Empty(t, result.Allocatable)
	assert.Equal(t, []BlockedSeat{{SeatID: 102, SeatNumber: 3, Reason: reasonHeldByOther}}, result.Blocked)
	assert.Empty(t, result.Warnings)
}

func TestClassifyRowsReservedByRequestingUserWarnsWithoutAllocating(t *testing.T) {
	rows := []repository.ConcertSeatRow{row(13, 103, 4, testStatuses.Reserved)}
	mine := func(concertSeatID uint64) (bool, error) {
		assert.Equal(t, uint64(13), concertSeatID)
		return true, nil
	}

	result, err := classifyRows(rows, testStatuses, mine)

	assert.NoError(t, err)
	assert.Empty(t, result.Allocatable)
	assert.Empty(t, result.Blocked)
	assert.Equal(t, []SeatWarning{{SeatID: 103, SeatNumber: 4, Message: warnAlreadyHeld}}, result.Warnings)
}

func TestClassifyRowsOccupiedSeatIsBlockedAsSold(t *testing.T) {
	rows := []repository.ConcertSeatRow{row(14, 104, 5, testStatuses.Occupied)}

	result, err := classifyRows(rows, testStatuses, noneHeld)

	assert.NoError(t, err)
	assert.Empty(t, result.Allocatable)
	assert.Equal(t, []BlockedSeat{{SeatID: 104, SeatNumber: 5, Reason: reasonSold}}, result.Blocked)
}

func TestClassifyRowsMixedStatusesPartitionWithoutOverlap(t *testing.T) {
	rows := []repository.ConcertSeatRow{
		row(10, 100, 1, testStatuses.Available),
		row(11, 101, 2, testStatuses.InCart),
		row(12, 102, 3, testStatuses.Reserved),
		row(13, 103, 4, testStatuses.Occupied),
	}

	result, err := classifyRows(rows, testStatuses, noneHeld)

	assert.NoError(t, err)
	assert.Len(t, result.Allocatable, 2)
	assert.Len(t, result.Blocked, 2)
	assert.Len(t, result.Warnings, 1)

	// A seat never lands in both Allocatable and Blocked.
	blocked := map[uint64]bool{}
	for _, b := range result.Blocked {
		blocked[b.SeatID] = true
	}
	for _, a := range result.Allocatable {
		assert.False(t, blocked[a.SeatID], "seat %d in both sets", a.SeatID)
	}
}

func TestClassifyRowsPreservesAscendingSeatOrder(t *testing.T) {
	// Rows arrive ordered by seat id from the repository query; the
	// classification must not reshuffle them.
	rows := []repository.ConcertSeatRow{
		row(20, 200, 1, testStatuses.Available),
		row(21, 201, 2, testStatuses.InCart),
		row(22, 205, 3, testStatuses.Available),
	}

	result, err := classifyRows(rows, testStatuses, noneHeld)

	assert.NoError(t, err)
	ids := make([]uint64, 0, len(result.Allocatable))
	for _, a := range result.Allocatable {
		ids = append(ids, a.SeatID)
	}
	assert.Equal(t, []uint64{200, 201, 205}, ids)
}

func TestClassifyRowsPropagatesOwnershipProbeError(t *testing.T) {
	rows := []repository.ConcertSeatRow{row(12, 102, 3, testStatuses.Reserved)}
	probeErr := errors.New("db gone")

	_, err := classifyRows(rows, testStatuses, func(uint64) (bool, error) { return false, probeErr })

	assert.ErrorIs(t, err, probeErr)
}

func TestSelectSeatsTakesFirstN(t *testing.T) {
	allocatable := []AllocatableSeat{
		{SeatID: 1}, {SeatID: 2}, {SeatID: 3}, {SeatID: 4},
	}

	chosen := selectSeats(allocatable, 2)

	assert.Equal(t, []AllocatableSeat{{SeatID: 1}, {SeatID: 2}}, chosen)
}

func TestSelectSeatsClampsToAvailable(t *testing.T) {
	allocatable := []AllocatableSeat{{SeatID: 1}}

	chosen := selectSeats(allocatable, 5)

	assert.Len(t, chosen, 1)
}
