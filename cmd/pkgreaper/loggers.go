// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "log"

// Loggers holds standard loggers and a verbosity flag. The engine itself
// never logs; only this command layer does.
type Loggers struct {
	Out, Err *log.Logger
	Verbose  bool
}

func (l *Loggers) debugf(format string, args ...interface{}) {
	if l.Verbose {
		l.Out.Printf(format, args...)
	}
}
