//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"encoding/json"
	"fmt"
	"os"
)

type Report struct {
	NReads         uint64   `json:"reads"`
	NCutSites      uint64   `json:"cut_sites"`
	NClipped       uint64   `json:"clipped"`
	NExcluded      uint64   `json:"excluded"`
	UnknownChroms  []string `json:"unknown_chroms,omitempty"`
	PlusShift      int      `json:"plus_shift"`
	MinusShift     int      `json:"minus_shift"`
	ShiftEstimated bool     `json:"shift_estimated"`
}

func WriteReport(pathReport string, report Report) (err error) {
	raw, _ := json.MarshalIndent(report, "", "  ")
	if pathReport != "-" {
		if f, err := os.Create(pathReport); err != nil {
			return err
		} else {
			f.Write(raw)
			f.Close()
		}
	} else {
		fmt.Println(string(raw))
	}
	return nil
}
