package testutil

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/lnwire"
)

// RandomAlphaNum generates random alphanumeric string
// in case length <= 0 it returns empty string
func RandomAlphaNum(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	if length <= 0 {
		return "", fmt.Errorf("length must be greater than 0")
	}

	randomString := make([]byte, length)
	for i := range randomString {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		randomString[i] = charset[num.Int64()]
	}

	return string(randomString), nil
}

// RandomChannelID returns a valid short channel id.
func RandomChannelID(f *gofakeit.Faker) lnwire.ShortChannelID {
	return lnwire.ShortChannelID{
		BlockHeight: f.Uint32()%(1<<24-1) + 1,
		TxIndex:     f.Uint32() % (1 << 24),
		TxPosition:  f.Uint16(),
	}
}

// RandomCapacity returns a channel size between 20k sats and 0.5 BTC.
func RandomCapacity(f *gofakeit.Faker) btcutil.Amount {
	return btcutil.Amount(f.IntRange(20_000, 50_000_000))
}

// RandomRatioSequence returns n ratios in [0, 1].
func RandomRatioSequence(f *gofakeit.Faker, n int) []float64 {
	ratios := make([]float64, n)
	for i := range ratios {
		ratios[i] = f.Float64Range(0, 1)
	}
	return ratios
}
