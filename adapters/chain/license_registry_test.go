package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	outputs  [][]byte
	err      error
	calls    []ethereum.CallMsg
	callSeen int
}

func (b *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return nil, nil
}

func (b *fakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	b.calls = append(b.calls, call)
	if b.err != nil {
		return nil, b.err
	}
	out := b.outputs[b.callSeen]
	b.callSeen++
	return out, nil
}

var (
	contractAddr = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	userAddr     = common.HexToAddress("0x9965507D1a55bcC2695C58ba16FB37d819B0A4dc")
)

func packOutputs(t *testing.T, method string, values ...interface{}) []byte {
	t.Helper()
	out, err := registryABI.Methods[method].Outputs.Pack(values...)
	require.NoError(t, err)
	return out
}

func TestCheckAccess(t *testing.T) {
	for _, granted := range []bool{true, false} {
		backend := &fakeBackend{outputs: [][]byte{packOutputs(t, "checkAccess", granted)}}
		registry := NewLicenseRegistry(backend, contractAddr, time.Second)

		got, err := registry.CheckAccess(context.Background(), userAddr)
		require.NoError(t, err)
		assert.Equal(t, granted, got)
		require.Len(t, backend.calls, 1)
		assert.Equal(t, contractAddr, *backend.calls[0].To)
	}
}

func TestCheckAccessRPCError(t *testing.T) {
	backend := &fakeBackend{err: errors.New("rpc timeout")}
	registry := NewLicenseRegistry(backend, contractAddr, time.Second)

	_, err := registry.CheckAccess(context.Background(), userAddr)
	assert.Error(t, err)
}

func TestGetLicenseInfo(t *testing.T) {
	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	backend := &fakeBackend{outputs: [][]byte{
		packOutputs(t, "getLicenseInfo", true, false, big.NewInt(expiry.Unix())),
	}}
	registry := NewLicenseRegistry(backend, contractAddr, time.Second)

	info, err := registry.GetLicenseInfo(context.Background(), userAddr)
	require.NoError(t, err)
	assert.True(t, info.HasAccess)
	assert.False(t, info.IsLifetime)
	assert.Equal(t, expiry, info.Expiry)
}

func TestGetLicenseInfoLifetime(t *testing.T) {
	backend := &fakeBackend{outputs: [][]byte{
		packOutputs(t, "getLicenseInfo", true, true, big.NewInt(0)),
	}}
	registry := NewLicenseRegistry(backend, contractAddr, time.Second)

	info, err := registry.GetLicenseInfo(context.Background(), userAddr)
	require.NoError(t, err)
	assert.True(t, info.IsLifetime)
	assert.True(t, info.Expiry.IsZero())
}

func TestGetLicenseInfoGarbageOutput(t *testing.T) {
	backend := &fakeBackend{outputs: [][]byte{{0x01, 0x02}}}
	registry := NewLicenseRegistry(backend, contractAddr, time.Second)

	_, err := registry.GetLicenseInfo(context.Background(), userAddr)
	assert.Error(t, err)
}
