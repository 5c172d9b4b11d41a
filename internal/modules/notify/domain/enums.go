//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// DeliveryResult represents the outcome of a notification attempt:
// delivered (rich message sent), degraded (plain-text fallback sent),
// lost (both attempts failed).
// ENUM(delivered,degraded,lost)
type DeliveryResult string
