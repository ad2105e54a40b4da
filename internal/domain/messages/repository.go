package messages

import "context"

type Repository interface {
	// Create asigna Seq (secuencia de inserción por application).
	Create(ctx context.Context, m Message) (Message, error)

	// ListByApplication devuelve el hilo ordenado por (CreatedAt, Seq).
	ListByApplication(ctx context.Context, applicationID string) ([]Message, error)
}
