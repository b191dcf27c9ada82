package types

import (
	"strconv"
	"strings"

	"github.com/lightningnetwork/lnd/lnwire"
)

const (
	maxBlockHeight = 1<<24 - 1
	maxTxIndex     = 1<<24 - 1
	maxTxPosition  = 1<<16 - 1
)

// ParseChannelID converts either the compact numeric SCID or the human readable
// BLOCKxTXxOUT (or BLOCK:TX:OUT) form into a short channel id.
func ParseChannelID(raw string) (lnwire.ShortChannelID, error) {
	str := strings.TrimSpace(raw)
	if str == "" {
		return lnwire.ShortChannelID{}, NewConfigError("channel id is required")
	}

	var parts []string
	switch {
	case strings.Contains(str, "x"):
		parts = strings.Split(str, "x")
	case strings.Contains(str, ":"):
		parts = strings.Split(str, ":")
	default:
		numeric, err := strconv.ParseUint(str, 10, 64)
		if err != nil || numeric == 0 {
			return lnwire.ShortChannelID{}, NewConfigError(
				"invalid channel id %q: must be numeric SCID or use the format 902245x1158x1", raw,
			)
		}
		return lnwire.NewShortChanIDFromInt(numeric), nil
	}

	if len(parts) != 3 {
		return lnwire.ShortChannelID{}, NewConfigError(
			"invalid SCID format %q: use format like 902245x1158x1", raw,
		)
	}

	limits := [3]uint64{maxBlockHeight, maxTxIndex, maxTxPosition}
	var values [3]uint64
	for i, part := range parts {
		v, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return lnwire.ShortChannelID{}, NewConfigError(
				"invalid SCID part %q in %q: must be a non-negative integer", part, raw,
			)
		}
		if v > limits[i] {
			return lnwire.ShortChannelID{}, NewConfigError(
				"invalid SCID part %q in %q: out of range", part, raw,
			)
		}
		values[i] = v
	}

	return lnwire.ShortChannelID{
		BlockHeight: uint32(values[0]),
		TxIndex:     uint32(values[1]),
		TxPosition:  uint16(values[2]),
	}, nil
}

// ChannelKey is the identifier used for the channel in the state store.
func ChannelKey(scid lnwire.ShortChannelID) string {
	return strconv.FormatUint(scid.ToUint64(), 10)
}

// HumanChannelID renders the SCID as BLOCKxTXxOUT.
func HumanChannelID(scid lnwire.ShortChannelID) string {
	return strconv.FormatUint(uint64(scid.BlockHeight), 10) + "x" +
		strconv.FormatUint(uint64(scid.TxIndex), 10) + "x" +
		strconv.FormatUint(uint64(scid.TxPosition), 10)
}
