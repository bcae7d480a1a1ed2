// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting error strings. Handlers translate them into HTTP statuses:
// not-found values become 404, ErrForbidden 403, ErrConflict and
// ErrSeatTaken 409, the remaining business rejections 422, and
// ErrTxConflict 503 after the bounded retry is exhausted.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// ticket they do not hold and they are not an admin.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state, such as scheduling a session over another one in
// the same hall or deactivating a hall that still has upcoming sessions.
var ErrConflict = errors.New("conflict")

// ErrMovieNotFound indicates that a movie was not located in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// ErrHallNotFound indicates that a hall was not located in the DB.
var ErrHallNotFound = errors.New("hall not found")

// ErrSessionNotFound indicates that a session was not located in the DB.
var ErrSessionNotFound = errors.New("session not found")

// ErrTicketNotFound indicates that a ticket was not located in the DB.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrUserNotFound indicates that a user was not located in the DB.
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidReference is returned by session scheduling when the movie or
// hall id does not exist. A bad reference in the request body is a
// validation failure, not a missing resource; 404 stays reserved for the
// session id in the URL.
var ErrInvalidReference = errors.New("referenced movie or hall does not exist")

// ErrMovieInactive is returned when a session references a deactivated movie.
var ErrMovieInactive = errors.New("movie is inactive")

// ErrHallInactive is returned when a session references a deactivated hall.
var ErrHallInactive = errors.New("hall is inactive")

// ErrSessionInactive is returned when booking or seat listing touches a
// deactivated session.
var ErrSessionInactive = errors.New("session is inactive")

// ErrSessionStarted is returned when an operation targets a session whose
// start time has already passed.
var ErrSessionStarted = errors.New("session has already started")

// ErrSeatOutOfRange is returned when a (row, seat) coordinate falls outside
// the hall's seat grid.
var ErrSeatOutOfRange = errors.New("seat does not exist in this hall")

// ErrSeatTaken is returned when the requested seat slot is already held or
// paid for by another ticket.
var ErrSeatTaken = errors.New("seat is already taken")

// ErrHoldExpired is returned by payment confirmation when the reservation
// hold lapsed before payment; the ticket is flipped to cancelled first.
var ErrHoldExpired = errors.New("reservation hold has expired")

// ErrAlreadyPaid is returned for state transitions on a paid ticket.
var ErrAlreadyPaid = errors.New("ticket is already paid")

// ErrAlreadyCancelled is returned for state transitions on a cancelled
// ticket. Cancelling twice reports this without mutating anything.
var ErrAlreadyCancelled = errors.New("ticket is already cancelled")

// ErrEmailExists is returned when registering a user with a taken email.
var ErrEmailExists = errors.New("email already exists")

// ErrTxConflict is returned after the automatic retry of a serialization
// failure (deadlock or lock wait timeout) is exhausted. The whole
// operation is safe to retry once by the caller.
var ErrTxConflict = errors.New("transient store conflict, retry the operation")
