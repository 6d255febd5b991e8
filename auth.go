package pokerorchestrator

// ensureAdmin verifies the command signer is the configured owner account.
func (o *orchestrator) ensureAdmin(signer string) error {
	if signer == "" {
		return ErrUnauthenticated
	}

	owner, err := o.store.GetOwner()
	if err != nil {
		return err
	}
	if owner == "" || signer != owner {
		return ErrUnauthorized
	}
	return nil
}

// ensurePlayerForSigner checks that the signer is bound to the claimed player
// id. The binding is created on first use and stays bijective afterwards: a
// signer keeps one player id for life, and a player id can never be claimed
// by a second signer.
func (o *orchestrator) ensurePlayerForSigner(signer string, playerID PlayerID) error {
	if signer == "" {
		return ErrUnauthenticated
	}

	if bound, exist, err := o.store.GetPlayerForSigner(signer); err != nil {
		return err
	} else if exist {
		if bound != playerID {
			return ErrPlayerIDMismatch
		}
		return nil
	}

	// New signer. The claimed id must not belong to someone else.
	if _, taken, err := o.store.GetSignerForPlayer(playerID); err != nil {
		return err
	} else if taken {
		return ErrPlayerIDMismatch
	}

	return o.store.BindSignerPlayer(signer, playerID)
}
