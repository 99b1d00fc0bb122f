// Package tokenmint builds, co-signs, submits and confirms the transaction
// that launches a new fungible token.
//
// A launch is one linear pipeline:
//
//  1. AssembleInstructions creates the four instructions: allocate the mint
//     account, initialize it, create the payer's associated token account,
//     mint the initial supply into it.
//  2. ComposeTransaction binds them to a fresh checkpoint with the payer as
//     fee payer.
//  3. CoSign signs with the ephemeral mint key and then hands the
//     transaction to the external Signer.
//  4. Tracker submits the signed bytes once and polls until the signature
//     is confirmed, rejected, or the checkpoint expires.
//
// Client.CreateToken runs the whole pipeline. Every failure is a
// *CreateError tagged with the Stage that produced it; use errors.Is with
// ErrInvalidParameters, ErrCheckpointUnavailable, ErrSigningRejected,
// ErrExpired or ErrRejected to branch on recovery strategy. Nothing is
// retried internally: a failed attempt must be restarted from a new
// checkpoint.
package tokenmint
