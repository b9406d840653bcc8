// Package automation provides the domain-event fan-out: trigger
// constants, the Webhook and Rule entities, and the Dispatcher that
// delivers trigger payloads to matching automations.
//
// Webhooks and rules are ordinary synced entities, created and edited
// through the mutation coordinator like any other record; the
// Dispatcher only reads them. On a trigger event it
//
//   - matches active rules and announces each match through the
//     extension registry (action execution is an extension concern),
//   - POSTs the trigger payload to every matching active webhook,
//     each delivery isolated so one endpoint's failure never affects
//     another's, rate-limited per organization.
//
// Dispatch is fire-and-forget: the calling mutation never waits for,
// or learns about, delivery outcomes.
package automation
