package warehouse

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/alekLukanen/BreweryMedallion/elements"
	"github.com/alekLukanen/BreweryMedallion/ingestion"
)

func decodePayload(payload string) (elements.RecordSet, error) {
	return ingestion.DecodeRecords(strings.NewReader(payload))
}

type storageMock struct {
	mock.Mock
}

func (obj *storageMock) Upload(ctx context.Context, bucket, key string, data []byte) error {
	ret := obj.Called(ctx, bucket, key, data)
	return ret.Error(0)
}

func (obj *storageMock) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	ret := obj.Called(ctx, bucket, key)
	return ret.Get(0).([]byte), ret.Error(1)
}

func (obj *storageMock) Delete(ctx context.Context, bucket, key string) error {
	ret := obj.Called(ctx, bucket, key)
	return ret.Error(0)
}

func (obj *storageMock) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	ret := obj.Called(ctx, bucket, prefix)
	return ret.Get(0).([]string), ret.Error(1)
}
