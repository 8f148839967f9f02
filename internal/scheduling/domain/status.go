package domain

// Quote lifecycle statuses.
const (
	StatusSolicitado = "SOLICITADO"
	StatusAprovado   = "APROVADO"
	StatusAgendado   = "AGENDADO"
	StatusRejeitado  = "REJEITADO"
	StatusEncerrado  = "ENCERRADO"
)

// Appointment categories.
const (
	CategorySpa       = "SPA"
	CategoryLogistica = "LOGISTICA"
)

// Appointment lifecycle statuses.
const (
	AppointmentConfirmado = "CONFIRMADO"
)

// IsClosedStatus reports whether a quote status is terminal. Closed quotes
// can never be scheduled again.
func IsClosedStatus(status string) bool {
	return status == StatusRejeitado || status == StatusEncerrado
}
