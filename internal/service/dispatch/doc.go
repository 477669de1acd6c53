// Package dispatch sends email campaigns. It deduplicates the requested
// recipient list, records one recipient row per address, delivers messages
// strictly sequentially through a mail.Sender, retries rate-limited sends
// with exponential backoff, and derives the campaign status from the final
// per-recipient counts.
package dispatch
