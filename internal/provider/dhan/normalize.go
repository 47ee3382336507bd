package dhan

import (
	"encoding/json"
	"math"
	"time"

	"github.com/arunpanwar240-bot/apna-screener/internal/markethours"
	"github.com/arunpanwar240-bot/apna-screener/internal/model"
)

// The provider answers in several shapes: a bare array of bar
// records, a map with the records nested under one of a few known
// keys, a single bar record, or a column-oriented map of parallel
// arrays (the /charts endpoints' native shape). ExtractBars folds
// them all into one ordered []RawBar at the boundary so nothing
// downstream inspects payload shapes.

// nestKeys are the map keys under which a bar sequence may hide.
var nestKeys = []string{"data", "result", "candles", "items", "rows"}

// ExtractBars normalizes a raw response body. It returns (nil, nil)
// for recognizably empty payloads and a KindFormat error for anything
// unrecognized. Rows missing the timestamp or any OHLC field are
// dropped individually, not the whole series.
func ExtractBars(raw []byte) ([]model.RawBar, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return barsFromRecords(list), nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, formatErr("normalize", err)
	}
	if len(obj) == 0 {
		return nil, nil
	}

	for _, key := range nestKeys {
		nested, ok := obj[key]
		if !ok {
			continue
		}
		if string(nested) == "null" {
			return nil, nil
		}
		return ExtractBars(nested)
	}

	if hasBarKeys(obj) {
		if isColumnar(obj) {
			return barsFromColumns(obj), nil
		}
		// Single bar-shaped record.
		return barsFromRecords([]json.RawMessage{mustMarshal(obj)}), nil
	}

	return nil, formatErr("normalize", nil)
}

func hasBarKeys(obj map[string]json.RawMessage) bool {
	for _, key := range []string{"open", "high", "low", "close"} {
		if _, ok := obj[key]; !ok {
			return false
		}
	}
	_, hasTS := obj["timestamp"]
	_, hasTime := obj["time"]
	return hasTS || hasTime
}

func isColumnar(obj map[string]json.RawMessage) bool {
	var arr []json.RawMessage
	return json.Unmarshal(obj["open"], &arr) == nil
}

// barRecord is one row-oriented bar. Pointers distinguish absent
// fields from zero values.
type barRecord struct {
	Timestamp *float64 `json:"timestamp"`
	Time      *float64 `json:"time"`
	Open      *float64 `json:"open"`
	High      *float64 `json:"high"`
	Low       *float64 `json:"low"`
	Close     *float64 `json:"close"`
	Volume    *float64 `json:"volume"`
}

func barsFromRecords(records []json.RawMessage) []model.RawBar {
	var bars []model.RawBar
	for _, raw := range records {
		var rec barRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		ts := rec.Timestamp
		if ts == nil {
			ts = rec.Time
		}
		if ts == nil || rec.Open == nil || rec.High == nil || rec.Low == nil || rec.Close == nil {
			continue
		}
		bar, ok := makeBar(*ts, *rec.Open, *rec.High, *rec.Low, *rec.Close, rec.Volume)
		if !ok {
			continue
		}
		bars = append(bars, bar)
	}
	return bars
}

func barsFromColumns(obj map[string]json.RawMessage) []model.RawBar {
	tsCol := floatColumn(obj, "timestamp")
	if tsCol == nil {
		tsCol = floatColumn(obj, "time")
	}
	open := floatColumn(obj, "open")
	high := floatColumn(obj, "high")
	low := floatColumn(obj, "low")
	closeCol := floatColumn(obj, "close")
	volume := floatColumn(obj, "volume")

	n := len(tsCol)
	for _, col := range [][]float64{open, high, low, closeCol} {
		if len(col) < n {
			n = len(col)
		}
	}

	var bars []model.RawBar
	for i := 0; i < n; i++ {
		var vol *float64
		if i < len(volume) {
			vol = &volume[i]
		}
		bar, ok := makeBar(tsCol[i], open[i], high[i], low[i], closeCol[i], vol)
		if !ok {
			continue
		}
		bars = append(bars, bar)
	}
	return bars
}

func floatColumn(obj map[string]json.RawMessage, key string) []float64 {
	raw, ok := obj[key]
	if !ok {
		return nil
	}
	var col []float64
	if err := json.Unmarshal(raw, &col); err != nil {
		return nil
	}
	return col
}

// makeBar builds a RawBar with the epoch-seconds timestamp converted
// to IST. Rows with non-finite prices are rejected here so every bar
// past the boundary is clean.
func makeBar(ts, o, h, l, c float64, vol *float64) (model.RawBar, bool) {
	for _, v := range []float64{ts, o, h, l, c} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.RawBar{}, false
		}
	}
	bar := model.RawBar{
		TS:    time.Unix(int64(ts), 0).In(markethours.IST),
		Open:  o,
		High:  h,
		Low:   l,
		Close: c,
	}
	if vol != nil && !math.IsNaN(*vol) && !math.IsInf(*vol, 0) && *vol > 0 {
		bar.Volume = int64(*vol)
	}
	return bar, true
}

func mustMarshal(obj map[string]json.RawMessage) json.RawMessage {
	b, _ := json.Marshal(obj)
	return b
}
