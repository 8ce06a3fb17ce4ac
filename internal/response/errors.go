package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"
	ErrTokenRevoked  ErrCode = "TOKEN_REVOKED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidQuery   ErrCode = "INVALID_QUERY"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"
	ErrActionForbidden  ErrCode = "ACTION_FORBIDDEN"

	// ─── Scheduling ────────────────────────────────────────────────────
	ErrAssignmentConflict ErrCode = "ASSIGNMENT_CONFLICT"
	ErrSemesterRequired   ErrCode = "SEMESTER_REQUIRED"
	ErrNoCurrentSemester  ErrCode = "NO_CURRENT_SEMESTER"

	// ─── Imports & exports ─────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrUnknownImport   ErrCode = "UNKNOWN_IMPORT_KIND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Cal un token d'autenticació."
	case ErrTokenInvalid:
		return "El token d'autenticació no és vàlid."
	case ErrTokenExpired:
		return "El token d'autenticació ha caducat."
	case ErrTokenRevoked:
		return "El token d'autenticació ha estat revocat."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "No teniu permís per accedir a aquest recurs."
	case ErrPermissionDenied:
		return "Permís denegat."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "La validació ha fallat. Reviseu les dades enviades."
	case ErrInvalidID:
		return "El format de l'identificador no és vàlid."
	case ErrInvalidPayload:
		return "El cos de la petició no és vàlid."
	case ErrInvalidQuery:
		return "Els paràmetres de la consulta no són vàlids."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "No s'ha trobat el recurs."
	case ErrConflict:
		return "El recurs ja existeix."
	case ErrDependencyExists:
		return "No es pot eliminar perquè altres dades en depenen."
	case ErrActionForbidden:
		return "Aquesta acció no està permesa."

	// ─── Scheduling ────────────────────────────────────────────────────
	case ErrAssignmentConflict:
		return "L'assignació té conflictes i no s'ha desat."
	case ErrSemesterRequired:
		return "Cal indicar el semestre."
	case ErrNoCurrentSemester:
		return "No hi ha cap curs acadèmic actual configurat."

	// ─── Imports & exports ─────────────────────────────────────────────
	case ErrFileRequired:
		return "Cal adjuntar un fitxer."
	case ErrUnsupportedFile:
		return "Tipus de fitxer no suportat."
	case ErrFileTooLarge:
		return "El fitxer supera la mida màxima."
	case ErrUnknownImport:
		return "Tipus d'importació desconegut."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Massa peticions. Torneu-ho a provar més tard."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "S'ha produït un error intern del servidor."
	default:
		return "S'ha produït un error inesperat."
	}
}
