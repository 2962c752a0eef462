package model

// Indicators holds one pre-computed RSI/MACD/ADX triple.
type Indicators struct {
	RSI  float64
	MACD float64
	ADX  float64
}

// Values returns the triple in column order.
func (i Indicators) Values() []float64 {
	return []float64{i.RSI, i.MACD, i.ADX}
}

// Row is one input record. Err is set when the record could not be parsed;
// such rows are reported but never evaluated.
type Row struct {
	Line       int // 1-based data row number, header excluded
	ID         string
	Indicators Indicators
	Err        error
}
