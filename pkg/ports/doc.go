/*
Package ports defines the driven ports of the elicitation core.

# Key Interfaces

  - Channel: the turn-based peer that receives prompts and produces raw responses.
  - TranscriptStore: persistence for the audit records of finished sessions.

RunChannelContract and RunTranscriptStoreContract are reusable suites that
adapters run from their own tests.
*/
package ports
