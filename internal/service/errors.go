package service

import "cashtrackr/internal/apperr"

var (
	// ErrEmailTaken is returned by Register when the email already has an account.
	ErrEmailTaken = apperr.Conflict("Un usuario con ese email ya esta registrado")
	// ErrEmailInUse is returned by UpdateProfile when another account owns the email.
	ErrEmailInUse = apperr.Conflict("Ese email ya esta registrado")
	// ErrUserNotFound is returned when no account matches the lookup.
	ErrUserNotFound = apperr.NotFound("Usuario no encontrado")
	// ErrNotConfirmed is returned by Login for accounts that never confirmed their email.
	ErrNotConfirmed = apperr.Forbidden("La cuenta no ha sido confirmada")
	// ErrAlreadyConfirmed is returned by ResendConfirmation for confirmed accounts.
	ErrAlreadyConfirmed = apperr.Conflict("La cuenta ya esta confirmada")
	// ErrWrongPassword is returned by Login when the password does not match.
	ErrWrongPassword = apperr.Unauthorized("Password incorrecto")
	// ErrWrongCurrentPassword is returned by ChangePassword when the current password does not match.
	ErrWrongCurrentPassword = apperr.Unauthorized("El password actual es incorrecto")
	// ErrInvalidConfirmToken is returned when a confirmation code is unknown, expired or already used.
	ErrInvalidConfirmToken = apperr.Unauthorized("Token no válido")
	// ErrInvalidResetToken is returned when a reset code is unknown, expired or already used.
	ErrInvalidResetToken = apperr.NotFound("Token no válido")
	// ErrBudgetNotFound is returned when a budget disappears before it is changed.
	ErrBudgetNotFound = apperr.NotFound("Presupuesto no encontrado")
	// ErrExpenseNotFound is returned when an expense disappears before it is changed.
	ErrExpenseNotFound = apperr.NotFound("Gasto no encontrado")
	// ErrInvalidAmount is returned for non-positive budget or expense amounts.
	ErrInvalidAmount = apperr.Validation("La cantidad no válida")
)
