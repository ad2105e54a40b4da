package messages

import "time"

// Message pertenece a exactamente una application. Es inmutable una
// vez creada (append-only): no hay edit ni delete. El hilo queda
// ordenado estricto por CreatedAt, con Seq como desempate de inserts
// dentro del mismo instante.
type Message struct {
	ID            string
	ApplicationID string
	SenderUserID  string

	Content string

	Seq       int64
	CreatedAt time.Time
}
