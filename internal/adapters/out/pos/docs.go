// Package pos integrates the point-of-sale providers behind one capability
// interface. Each provider lives in its own file and isolates its payload
// quirks there; the rest of the system only ever sees ports.PosAdapter and
// normalized webhook events.
//
// Adapters are selected through a provider-keyed Registry built at startup,
// never by runtime type inspection.
package pos
