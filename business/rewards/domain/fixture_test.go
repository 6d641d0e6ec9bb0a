package domain

import (
	"math/big"
	"testing"
	"time"

	pricing "github.com/fd1az/aurora-staking/business/pricing/domain"
)

// Six-stream snapshot of the mainnet staking contract: base, four reward
// streams and the vote stream.
var fixtureSchedules = [][2][]string{
	{
		{
			"0x6283b870", "0x62fc1cc0", "0x63748110", "0x63ece560", "0x646549b0",
			"0x64dd9690", "0x6555e370", "0x65ce3050", "0x66467d30", "0x66beca10",
			"0x673716f0", "0x67af63d0", "0x6827b0b0", "0x689ffd90", "0x69184a70",
			"0x69909750", "0x6a08e430", "0x6a813110", "0x6af97df0", "0x6b71cad0",
			"0x6bea17b0",
		},
		{
			"0x19a4815e0ad0c67f000000", "0x18e5ec4503e523d4800000", "0x17e7d023a555a046800000",
			"0x166aa5f1977e5af1800000", "0x14adf4b7320334b9000000", "0x12ed102d7f303f41585d21",
			"0x113f33b957214b50cc20ec", "0x0fa390cb47e07021795104", "0x0e196195c65604b36893b8",
			"0x0c9fe8ae250998e1f5db5d", "0x0b3670b18eff1d64fbf7c2", "0x09dc4bedde78540b3cd05f",
			"0x0890d40e25b863c204d3f3", "0x075369cac1ae016887bbb3", "0x0623749cd01bedfe15b631",
			"0x05006274e478659ee3c9b1", "0x03e9a774d84b494b3b9d85", "0x02debdac95510f71eb7a79",
			"0x01df24d9b9169458441865", "0xea6229f3206ba5b70714", "0x00",
		},
	},
	{
		{"0x6283b870", "0x62fc1cc0", "0x63748110", "0x63ece560", "0x646549b0"},
		{"0x013842bc01733068e9800000", "0x01096bec9ad51c592ce00000", "0xcaf82d6757ac4431600000", "0x6d4a8e9a1b8424b8200000", "0x00"},
	},
	{
		{"0x6283b870", "0x62fc1cc0", "0x63748110", "0x63ece560", "0x646549b0"},
		{"0xd3c21bcecceda1000000", "0xb3fe97a2fafd2f400000", "0x89a49213386742400000", "0x4a1d89bb94865ec00000", "0x00"},
	},
	{
		{"0x6283b870", "0x62fc1cc0", "0x63748110", "0x63ece560", "0x646549b0"},
		{"0x7c13bc4b2c133c56000000", "0x69772cd97f1059af800000", "0x50a66d97430c80d1800000", "0x2b6d4eb3e906bb84800000", "0x00"},
	},
	{
		{"0x6283b870", "0x62fc1cc0"},
		{"0x017d2a320dd74555000000", "0x00"},
	},
	{
		{"0x62da8e5e", "0x65920080"},
		{"0x033b2e3c9fd0803ce8000000", "0x00"},
	},
}

const fixtureTotalStaked = "0x29e8fc8cde8b0a5b7fecce"

var fixturePrices = []float64{0.135344, 0.00007611, 0.00141883, 0.00000127, 0.245603, 0}

func hexInt(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s[2:], 16)
	if !ok {
		t.Fatalf("bad hex %q", s)
	}
	return v
}

func hexInts(t *testing.T, in []string) []*big.Int {
	t.Helper()
	out := make([]*big.Int, len(in))
	for i, s := range in {
		out[i] = hexInt(t, s)
	}
	return out
}

func fixture(t *testing.T) []*Schedule {
	t.Helper()
	out := make([]*Schedule, len(fixtureSchedules))
	for i, raw := range fixtureSchedules {
		s, err := NewSchedule(hexInts(t, raw[0]), hexInts(t, raw[1]))
		if err != nil {
			t.Fatalf("fixture schedule %d: %v", i, err)
		}
		out[i] = s
	}
	return out
}

func fixtureInput(t *testing.T, ref time.Time) APRInput {
	t.Helper()
	prices := make([]pricing.UnitPrice, len(fixturePrices))
	for i, p := range fixturePrices {
		prices[i] = pricing.SomePrice(p)
	}
	return APRInput{
		Schedules:   fixture(t),
		Decimals:    []uint8{18, 18, 18, 18, 18, 18},
		Prices:      prices,
		TotalStaked: hexInt(t, fixtureTotalStaked),
		RefMs:       ref.UnixMilli(),
	}
}

func ints(vals ...int64) []*big.Int {
	out := make([]*big.Int, len(vals))
	for i, v := range vals {
		out[i] = big.NewInt(v)
	}
	return out
}
