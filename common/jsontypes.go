package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Os formulários do painel mandam números como texto ("950000") e booleanos
// como 0/1. Os tipos abaixo aceitam as duas formas; "" e null contam como ausentes.

type OptFloat struct {
	Value float64
	Valid bool
}

type OptInt struct {
	Value int
	Valid bool
}

type OptID struct {
	Value uint
	Valid bool
}

type Flag bool

func scalarText(b []byte) (string, bool, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", false, nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false, err
		}
		s = strings.TrimSpace(s)
		return s, s != "", nil
	}
	return string(b), true, nil
}

func (f *OptFloat) UnmarshalJSON(b []byte) error {
	s, ok, err := scalarText(b)
	if err != nil || !ok {
		*f = OptFloat{}
		return err
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return fmt.Errorf("valor numérico inválido: %q", s)
	}
	*f = OptFloat{Value: v, Valid: true}
	return nil
}

func (f OptFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f OptFloat) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

func (i *OptInt) UnmarshalJSON(b []byte) error {
	s, ok, err := scalarText(b)
	if err != nil || !ok {
		*i = OptInt{}
		return err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// "3.0" e "1e2" passam; frações e valores fora da faixa exata do float não
		v, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return fmt.Errorf("valor inteiro inválido: %q", s)
		}
		n = int(v)
	}
	*i = OptInt{Value: n, Valid: true}
	return nil
}

func (i OptInt) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(i.Value)
}

func (i OptInt) Ptr() *int {
	if !i.Valid {
		return nil
	}
	v := i.Value
	return &v
}

func (id *OptID) UnmarshalJSON(b []byte) error {
	s, ok, err := scalarText(b)
	if err != nil || !ok {
		*id = OptID{}
		return err
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("id inválido: %q", s)
	}
	*id = OptID{Value: uint(v), Valid: v > 0}
	return nil
}

func (id OptID) MarshalJSON() ([]byte, error) {
	if !id.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(id.Value)
}

func (id OptID) Ptr() *uint {
	if !id.Valid {
		return nil
	}
	v := id.Value
	return &v
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	s, _, err := scalarText(b)
	if err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "", "0", "false", "off", "nao", "não":
		*f = false
	case "1", "true", "on", "sim":
		*f = true
	default:
		return fmt.Errorf("valor booleano inválido: %q", s)
	}
	return nil
}
