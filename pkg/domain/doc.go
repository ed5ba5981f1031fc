/*
Package domain contains the core models shared by every elicitation layer.

It defines what travels between a session and its channel, how failures are
classified, and what a finished session leaves behind. This package is kept
pure and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - Prompt and Response: one round of the conversation with the answering party.
  - ValidationError: a refusal from a contract, carrying a Violation code.
  - ErrorKind: the category of a failure (parse, validation, channel, cancelled, exhausted).
  - Transcript: the ordered record of a session's exchanges and its Outcome.
  - LifecycleHooks: callbacks fired per round and once at the end of a session.
*/
package domain
