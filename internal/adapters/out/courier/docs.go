// Package courier integrates the delivery-dispatch providers behind
// ports.CourierAdapter. Dispatch requests carry the order id as the external
// delivery id, so a retried request resolves to the job the provider already
// holds instead of summoning a second driver.
//
// Like package pos, adapters are selected through a provider-keyed Registry
// built at startup.
package courier
