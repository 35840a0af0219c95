package collector

import "math"

const rsiPeriod = 14

// sma returns the simple moving average of the last window closes,
// or 0 when there are fewer closes than the window.
func sma(closes []float64, window int) float64 {
	if window <= 0 || len(closes) < window {
		return 0
	}
	sum := 0.0
	for _, c := range closes[len(closes)-window:] {
		sum += c
	}
	return sum / float64(window)
}

// wilderRSI computes RSI with Wilder smoothing (EWM, alpha = 1/period,
// seeded with the first diff). Fewer than period+1 closes gives 0.
func wilderRSI(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 0
	}

	alpha := 1.0 / float64(period)
	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (1-alpha)*avgGain + alpha*gain
		avgLoss = (1-alpha)*avgLoss + alpha*loss
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// pctChange returns (last/first - 1) * 100 over the series
func pctChange(closes []float64) float64 {
	if len(closes) < 2 || closes[0] == 0 {
		return 0
	}
	return (closes[len(closes)-1]/closes[0] - 1) * 100
}

// lastN returns at most the last n elements
func lastN[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
