package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotObject = errors.New("record is not a JSON object")

// fieldSet 逐欄位讀取 JSON 物件, 同一個欄位可以有多種拼法
// 第一個讀取錯誤會被保留, 之後的 read 都直接略過
type fieldSet struct {
	raw map[string]json.RawMessage
	err error
}

func newFieldSet(data []byte) (*fieldSet, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrNotObject
	}
	return &fieldSet{raw: raw}, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (f *fieldSet) has(names ...string) bool {
	for _, name := range names {
		if v, ok := f.raw[name]; ok && !isNull(v) {
			return true
		}
	}
	return false
}

// read 依序嘗試 names, 以第一個存在且非 null 的欄位為準
func (f *fieldSet) read(dst any, names ...string) bool {
	if f.err != nil {
		return false
	}
	for _, name := range names {
		v, ok := f.raw[name]
		if !ok || isNull(v) {
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			f.err = fmt.Errorf("%s: %w", name, err)
			return false
		}
		return true
	}
	return false
}

// base snake_case 優先, 沒有 updated_at 時沿用 created_at
func (f *fieldSet) base() Base {
	var b Base
	f.read(&b.ID, "id")
	f.read(&b.CreatedAt, "created_at", "createdAt")
	if !f.read(&b.UpdatedAt, "updated_at", "updatedAt") {
		b.UpdatedAt = b.CreatedAt
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b
}

/*
decodeRecords 逐筆解析 JSON 陣列
回傳可以轉換的紀錄, 無法轉換的紀錄錯誤會用 errors.Join 合併回傳
整個陣列無法解析時回傳 nil
*/
func decodeRecords[T any](data []byte, label string, decode func([]byte) (T, error)) ([]T, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode %s: %w", label, err)
	}

	records := make([]T, 0, len(raws))
	var errs []error
	for i, raw := range raws {
		record, err := decode(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s[%d]: %w", label, i, err))
			continue
		}
		records = append(records, record)
	}
	return records, errors.Join(errs...)
}
