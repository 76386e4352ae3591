// Package wrangle cleans tabular data from plain-English instructions.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/wrangle/session"
//	    "github.com/spektr-org/wrangle/translator"
//	)
//
//	tr, _ := translator.New(translator.DefaultGeminiConfig(apiKey))
//	o := session.NewOrchestrator(tr)
//	o.Load("people.csv", data)
//	out, err := o.ApplyCommand(ctx, "remove rows where age is missing")
//
// The translator turns an instruction into one statement over `df`; the
// executor runs it against a copy of the working table using only the
// operations of executor.Frame. Each successful step is logged and can be
// exported as a recipe and replayed without the model.
//
// Packages table, executor, translator, session and recipe hold the
// pipeline. config, logging, server, tui and cmd/wrangle are the surfaces.
package wrangle
