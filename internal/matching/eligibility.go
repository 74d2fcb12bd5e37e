package matching

// FilterEligible selects the candidate pool from a profile snapshot by
// applying the hard eligibility predicates. Pure function of its input: no
// side effects, deterministic, and an empty result is a valid outcome (a slow
// week, not an error).
//
// Records passing the predicates but carrying no scoreable signal at all are
// set aside with a reason instead of entering the pool.
func FilterEligible(profiles []*EligibleUser) (eligible []*EligibleUser, excluded []ExclusionReason) {
    eligible = make([]*EligibleUser, 0, len(profiles))

    for _, p := range profiles {
        switch {
        case p == nil:
            continue
        case !p.IsVerified:
            continue
        case !p.IsSubscribed:
            continue
        case p.IsBanned:
            continue
        case !p.OnboardingComplete:
            continue
        case p.InActiveGroup:
            continue
        }

        if !p.HasUsableSignal() {
            excluded = append(excluded, ExclusionReason{
                UserID: p.ID,
                Reason: "profile has no specialty, city, interests or availability",
            })
            continue
        }

        eligible = append(eligible, p)
    }

    return eligible, excluded
}
