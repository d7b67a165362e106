package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func nearestSample(freqs []float64, f float64) int {
	idx := 0
	for i := range freqs {
		if math.Abs(math.Log10(freqs[i])-math.Log10(f)) < math.Abs(math.Log10(freqs[idx])-math.Log10(f)) {
			idx = i
		}
	}
	return idx
}

func TestFrequencies(t *testing.T) {
	assert := require.New(t)

	freqs := Frequencies()
	assert.Len(freqs, Samples)
	assert.InDelta(MinFrequency, freqs[0], 1e-9)
	assert.InDelta(MaxFrequency, freqs[Samples-1], 1e-6)

	for i := 1; i < len(freqs); i++ {
		assert.Greater(freqs[i], freqs[i-1])
	}

	// constant ratio between samples
	ratio := freqs[1] / freqs[0]
	assert.InDelta(ratio, freqs[200]/freqs[199], 1e-9)
	assert.InDelta(math.Pow(10, 3.0/float64(Samples-1)), ratio, 1e-12)
}

func TestCompute(t *testing.T) {
	t.Run("no bands", func(t *testing.T) {
		assert := require.New(t)

		res := Compute(nil, &Passband{HighPassEnabled: true, HighPassFrequency: 100})
		assert.False(res.Available)
		assert.Nil(res.Combined)
	})

	t.Run("zero gain is flat", func(t *testing.T) {
		for _, b := range []Band{
			{Frequency: 1000, Gain: 0, Q: 1},
			{Frequency: 63, Gain: 0, Q: 0.3},
			{Frequency: 12000, Gain: 0, Q: 8},
		} {
			res := Compute([]Band{b}, nil)
			require.True(t, res.Available)
			for i, v := range res.Combined {
				require.Equal(t, 0.0, v, "sample %d", i)
			}
		}
	})

	t.Run("peak at center frequency", func(t *testing.T) {
		assert := require.New(t)

		res := Compute([]Band{{Name: "Mid", Frequency: 1000, Gain: 6, Q: 1}}, nil)
		peak := nearestSample(res.Frequencies, 1000)

		maxIdx := 0
		for i, v := range res.Combined {
			if v > res.Combined[maxIdx] {
				maxIdx = i
			}
		}
		assert.Equal(peak, maxIdx)
		assert.InDelta(6, res.Combined[peak], 1e-3)

		for i := peak + 1; i < len(res.Combined); i++ {
			assert.Less(res.Combined[i], res.Combined[i-1])
		}
		for i := peak - 1; i >= 0; i-- {
			assert.Less(res.Combined[i], res.Combined[i+1])
		}
	})

	t.Run("combined is the sum of the bands", func(t *testing.T) {
		assert := require.New(t)

		res := Compute([]Band{
			{Frequency: 100, Gain: 3, Q: 1},
			{Frequency: 5000, Gain: -4, Q: 2},
		}, nil)
		assert.Len(res.Bands, 2)
		for i := range res.Combined {
			assert.InDelta(res.Bands[0].Response[i]+res.Bands[1].Response[i], res.Combined[i], 1e-12)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		assert := require.New(t)

		res := Compute([]Band{{Frequency: math.NaN(), Gain: math.NaN(), Q: math.NaN()}}, nil)
		assert.Equal(Band{Frequency: DefaultFrequency, Gain: 0, Q: DefaultQ}, res.Bands[0].Band)

		res = Compute([]Band{{Frequency: 0, Gain: 2, Q: -1}}, nil)
		assert.Equal(Band{Frequency: DefaultFrequency, Gain: 2, Q: DefaultQ}, res.Bands[0].Band)

		res = Compute([]Band{{Frequency: 500, Gain: 2, Q: 1e-9}}, nil)
		assert.Equal(MinQ, res.Bands[0].Band.Q)
	})

	t.Run("without passband the filters are omitted", func(t *testing.T) {
		assert := require.New(t)

		res := Compute([]Band{{Frequency: 1000, Gain: 6, Q: 1}}, nil)
		assert.Nil(res.HighPass)
		assert.Nil(res.LowPass)

		res = Compute([]Band{{Frequency: 1000, Gain: 6, Q: 1}}, &Passband{HighPassFrequency: 100, LowPassFrequency: 10000})
		assert.Nil(res.HighPass)
		assert.Nil(res.LowPass)
	})

	t.Run("enabled filters", func(t *testing.T) {
		assert := require.New(t)

		res := Compute([]Band{{Frequency: 1000, Gain: 6, Q: 1}}, &Passband{
			HighPassEnabled:   true,
			HighPassFrequency: 100,
			LowPassEnabled:    true,
		})
		assert.Len(res.HighPass, Samples)
		assert.Len(res.LowPass, Samples)
		assert.InDelta(HighPass(res.Frequencies[10], 100), res.HighPass[10], 1e-12)
		assert.InDelta(LowPass(res.Frequencies[10], DefaultLowPassFrequency), res.LowPass[10], 1e-12)
		assert.Less(res.Min, HighPass(MinFrequency, 100))
	})

	t.Run("idempotent", func(t *testing.T) {
		assert := require.New(t)

		bands := []Band{{Frequency: 250, Gain: -3, Q: 0.7}, {Frequency: 8000, Gain: 2, Q: 3}}
		pass := &Passband{HighPassEnabled: true, HighPassFrequency: 80}
		assert.Equal(Compute(bands, pass), Compute(bands, pass))
	})
}

func TestFilterResponse(t *testing.T) {
	assert := require.New(t)

	expected := 20 * math.Log10(100/math.Sqrt(100*100+100*100))
	assert.InDelta(expected, HighPass(100, 100), 1e-12)
	assert.InDelta(-3.0103, HighPass(100, 100), 1e-4)
	assert.InDelta(-3.0103, LowPass(100, 100), 1e-4)

	assert.InDelta(0, HighPass(20000, 20), 1e-5)
	assert.InDelta(0, LowPass(20, 20000), 1e-5)
}

func TestValueRange(t *testing.T) {
	t.Run("minimum padding", func(t *testing.T) {
		assert := require.New(t)

		res := Compute([]Band{{Frequency: 1000, Gain: 0, Q: 1}}, nil)
		assert.Equal(-MinPadding, res.Min)
		assert.Equal(MinPadding, res.Max)
	})

	t.Run("proportional padding", func(t *testing.T) {
		assert := require.New(t)

		res := Compute([]Band{{Frequency: 1000, Gain: 100, Q: 1}}, nil)

		min, max := res.Combined[0], res.Combined[0]
		for _, v := range res.Combined {
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
		pad := 0.12 * (max - min)
		assert.Greater(pad, MinPadding)
		assert.InDelta(min-pad, res.Min, 1e-9)
		assert.InDelta(max+pad, res.Max, 1e-9)
	})
}
