/*
Package domain contains the core domain models of the Souqra launch pipeline.

It defines the session record, the marketing artifacts each step produces and
the partial updates that move a session forward. This package is kept pure and
free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Brief: The product description a session starts from.
  - State: The persisted snapshot of a session (brief, step outputs, selections, error markers).
  - Update: A partial, field-wise write applied with State.Apply. Step outputs are write-once.
  - MarketResearch, KeywordStrategy, CreativeDraft, CampaignPlan: Step outputs.
  - LifecycleHooks: Callbacks fired by the engine around steps, pauses and writes.
*/
package domain
