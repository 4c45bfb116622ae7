// Package notify implements push delivery to registered devices.
//
// The dispatcher:
//   - Selects the audience per event from device preference columns
//   - Routes each device to FCM or the Expo Push API by token shape
//   - Composes Turkish message bodies matching the mobile app wording
//   - Clears tokens the push services report as stale
//   - Paces sends with a configurable delay between devices
package notify
