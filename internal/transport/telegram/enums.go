//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package telegram

// DialogState represents where a user is in the search-creation dialog
// ENUM(idle,awaiting_name,awaiting_tags,awaiting_price_min,awaiting_price_max,awaiting_interval,awaiting_photo,awaiting_search_photo)
type DialogState string
