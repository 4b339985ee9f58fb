// Package datagram bridges the trace probes' UDP stream to the log store.
//
// Every packet is one message. After decoding and trimming, the exact
// payload "===CLEAR===" resets the store and anything else is appended as a
// line. There is no sequencing, retransmission or loss detection: packets
// are applied in the order the single read loop receives them.
//
// Decoding never rejects a packet. Valid UTF-8 passes through. Other bytes
// are transcoded from the charset chardet detects, and anything left
// invalid is replaced with U+FFFD.
package datagram
