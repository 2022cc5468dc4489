// Package normalize turns raw timeline server payloads into flat,
// id-linked records.
//
// Pipeline:
//  1. Router detects the envelope (collection or single entity) and hands
//     every raw entity to the Normalizer of the requested kind.
//  2. The normalizer projects the entity through its fieldmap.Spec.
//  3. ExtractCounters hoists otherinfo.counters into CounterGroup and
//     Counter records whose ids derive from the parent id.
//  4. Kind specific steps run (logs URL parsing for attempts, config
//     explosion for applications).
//  5. The per-entity batches are merged in input order; failed entities are
//     reported in Batch.Failures without affecting their siblings.
package normalize
