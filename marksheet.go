// Package marksheet analyses student marks stored in CSV or Excel files.
//
// Usage:
//
//	ds, err := loader.LoadFile("class.csv")
//	if err != nil {
//	    return err
//	}
//	a := engine.New(ds, engine.WithTopN(3))
//	res, err := engine.Execute(a, engine.Request{Operation: engine.OpPassRates})
//
// Loading is handled by the loader package, column profiling by schema,
// computation by engine, and rendering by export and charts. The engine
// never mutates the loaded dataset; derived tables and datasets are new
// values.
package marksheet
