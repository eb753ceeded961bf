// Package admin is the administrative client capability used to inspect and
// mutate broker configuration.
//
// The Client interface is deliberately small: describe broker configs with
// their synonyms, submit incremental alter requests, and read cluster and
// topic metadata. KafkaClient implements it with franz-go; tests use the
// in-memory fake in admintest.
//
// # Alter handles
//
// IncrementalAlterConfigs never blocks. It returns one Future per submitted
// resource, one resource per broker, and the caller waits on each handle
// independently:
//
//	futures := client.IncrementalAlterConfigs(ctx, resources)
//	for _, f := range futures {
//	    if err := f.Wait(waitCtx); err != nil {
//	        // every entry sent to f.NodeID failed
//	    }
//	}
//
// The protocol reports one outcome per resource, so a failure applies to every
// entry in that broker's request.
package admin
