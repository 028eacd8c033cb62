package document

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/sports-travel-platform/internal/money"
	"github.com/wolfman30/sports-travel-platform/internal/quotes"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func sampleDocument() QuoteDocument {
	adj := quotes.NewAdjustments()
	adj.Set("groupDiscount", quotes.Adjustment{Percentage: money.NewAmount(-10)})
	adj.Set("airportTransfer", quotes.Adjustment{Value: money.NewAmount(2500)})
	q := &quotes.Quote{
		ID:                "q-42",
		LeadID:            "lead-7",
		EventID:           "ev-1",
		PackageID:         "pkg-1",
		NumberOfTravelers: 3,
		BasePrice:         money.NewAmount(60000),
		Adjustments:       adj,
		TravelDate:        time.Date(2026, 5, 29, 0, 0, 0, 0, time.UTC),
		ValidUntil:        time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC),
		Status:            quotes.StatusSent,
		Notes:             "Includes hotel breakfast.",
	}
	q.Recompute()
	return QuoteDocument{
		Quote:         q,
		CustomerName:  "Asha Rao",
		CustomerEmail: "asha@example.com",
		EventName:     "IPL Final",
		EventLocation: "Mumbai",
		PackageName:   "Premium Box",
		Tier:          "Premium",
		IssuedAt:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	pdf, err := Render(sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	_, err = Render(QuoteDocument{})
	assert.Error(t, err)
}

func TestPublish(t *testing.T) {
	store := &fakeS3{}
	pub := NewPublisher(PublisherConfig{S3: store, Bucket: "quote-docs", Prefix: "/offers/"})

	key, err := pub.Publish(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, "offers/quote-q-42.pdf", key)
	require.Len(t, store.inputs, 1)
	assert.Equal(t, "quote-docs", aws.ToString(store.inputs[0].Bucket))
	assert.Equal(t, "application/pdf", aws.ToString(store.inputs[0].ContentType))
	assert.Equal(t, "lead-7", store.inputs[0].Metadata["lead-id"])
	assert.True(t, bytes.HasPrefix(store.bodies[0], []byte("%PDF-")))
}

func TestPublishErrors(t *testing.T) {
	_, err := NewPublisher(PublisherConfig{S3: &fakeS3{}}).Publish(context.Background(), sampleDocument())
	assert.Error(t, err)

	pub := NewPublisher(PublisherConfig{S3: &fakeS3{err: errors.New("access denied")}, Bucket: "b"})
	_, err = pub.Publish(context.Background(), sampleDocument())
	assert.ErrorContains(t, err, "access denied")
}
