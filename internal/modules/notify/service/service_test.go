package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	listingDomain "github.com/reshetovitsme/goofish-monitor/internal/modules/listing/domain"
	"github.com/reshetovitsme/goofish-monitor/internal/modules/notify/domain"
	"github.com/reshetovitsme/goofish-monitor/internal/modules/notify/service"
	"github.com/reshetovitsme/goofish-monitor/internal/shared/config"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	photoErr   error
	messageErr error

	photos   []*bot.SendPhotoParams
	messages []*bot.SendMessageParams
}

func (f *fakeSender) SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
	f.photos = append(f.photos, params)
	if f.photoErr != nil {
		return nil, f.photoErr
	}
	return &models.Message{}, nil
}

func (f *fakeSender) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.messages = append(f.messages, params)
	if f.messageErr != nil {
		return nil, f.messageErr
	}
	return &models.Message{}, nil
}

type fakeTranslator struct {
	err error
}

func (f *fakeTranslator) Translate(ctx context.Context, text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if text == "" {
		return "", nil
	}
	return "[ru] " + text, nil
}

func testConfig() *config.Config {
	return &config.Config{
		CurrencyRate:  13.5,
		NotifyDelayMs: 0,
	}
}

func listing() *listingDomain.Listing {
	return &listingDomain.Listing{
		ExternalID:  "ad-1",
		Title:       "瑞克欧文斯 Ramones",
		Description: "9成新，两次上脚",
		Price:       1000,
		Seller:      "seller-1",
		ImageURL:    "https://img.example/a.jpg",
		URL:         "https://goofish.example/item/1",
		PostedAt:    "2025-06-01",
	}
}

func newService(sender *fakeSender, translator *fakeTranslator) *service.Service {
	svc := service.New(testConfig(), translator)
	svc.SetSender(sender)
	return svc
}

func TestNotify_RichDelivery(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender, &fakeTranslator{})

	result, err := svc.Notify(context.Background(), 42, listing(), "Rick Owens")
	require.NoError(t, err)
	require.Equal(t, domain.DeliveryResultDelivered, result)
	require.Len(t, sender.photos, 1)
	require.Empty(t, sender.messages, "no fallback when the photo message succeeds")

	photo := sender.photos[0]
	require.EqualValues(t, 42, photo.ChatID)
	require.Equal(t, "https://img.example/a.jpg", photo.Photo.(*models.InputFileString).Data)
}

func TestNotify_DegradedFallback(t *testing.T) {
	sender := &fakeSender{photoErr: errors.New("telegram: PHOTO_INVALID_DIMENSIONS")}
	svc := newService(sender, &fakeTranslator{})

	result, err := svc.Notify(context.Background(), 42, listing(), "Rick Owens")
	require.NoError(t, err)
	require.Equal(t, domain.DeliveryResultDegraded, result)
	require.Len(t, sender.photos, 1)
	require.Len(t, sender.messages, 1, "fallback text message expected")
}

func TestNotify_Lost(t *testing.T) {
	sender := &fakeSender{
		photoErr:   errors.New("telegram down"),
		messageErr: errors.New("telegram down"),
	}
	svc := newService(sender, &fakeTranslator{})

	result, err := svc.Notify(context.Background(), 42, listing(), "Rick Owens")
	require.Error(t, err)
	require.Equal(t, domain.DeliveryResultLost, result)
}

func TestNotify_NoImageGoesStraightToText(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender, &fakeTranslator{})

	l := listing()
	l.ImageURL = ""

	result, err := svc.Notify(context.Background(), 42, l, "Rick Owens")
	require.NoError(t, err)
	require.Equal(t, domain.DeliveryResultDelivered, result)
	require.Empty(t, sender.photos)
	require.Len(t, sender.messages, 1)
}

func TestNotify_CaptionContents(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender, &fakeTranslator{})

	l := listing()
	similarity := 0.8
	l.Similarity = &similarity

	_, err := svc.Notify(context.Background(), 42, l, "Rick Owens")
	require.NoError(t, err)
	require.Len(t, sender.photos, 1)

	caption := sender.photos[0].Caption
	require.Contains(t, caption, "Rick Owens", "search name")
	require.Contains(t, caption, "[ru] 瑞克欧文斯 Ramones", "translated title")
	require.Contains(t, caption, "1000¥", "original price")
	require.Contains(t, caption, "13 500₽", "converted price with digit grouping")
	require.Contains(t, caption, "seller-1")
	require.Contains(t, caption, "Similarity: 80%")
	require.Contains(t, caption, `<a href="https://goofish.example/item/1">`)
}

func TestNotify_NoSimilarityLineWithoutScore(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender, &fakeTranslator{})

	_, err := svc.Notify(context.Background(), 42, listing(), "Rick Owens")
	require.NoError(t, err)
	require.NotContains(t, sender.photos[0].Caption, "Similarity")
}

func TestNotify_TranslatorFailureKeepsOriginalText(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender, &fakeTranslator{err: errors.New("translator down")})

	result, err := svc.Notify(context.Background(), 42, listing(), "Rick Owens")
	require.NoError(t, err, "translation is best-effort")
	require.Equal(t, domain.DeliveryResultDelivered, result)
	require.Contains(t, sender.photos[0].Caption, "瑞克欧文斯 Ramones", "original title shown")
}

func TestNotify_TruncatesLongDescriptions(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender, &fakeTranslator{})

	l := listing()
	l.Description = strings.Repeat("好", 500)

	_, err := svc.Notify(context.Background(), 42, l, "")
	require.NoError(t, err)

	caption := sender.photos[0].Caption
	require.Contains(t, caption, "[ru] "+strings.Repeat("好", 200))
	require.NotContains(t, caption, strings.Repeat("好", 201))
}
