package model

// AccountSettings holds the account-level bot configuration. Both fields are
// always concrete once the row exists; a missing row means both are false.
type AccountSettings struct {
	AccountID                     string
	AutoReviewEnabled             bool
	RequestChangesWorkflowEnabled bool
}

// RepositorySettings holds the repository-level override tier. Fields are
// tri-state: a nil field inherits the owning account's value, so a repository
// may override one flag while inheriting the other.
type RepositorySettings struct {
	RepositoryID                  string
	AutoReviewEnabled             *bool
	RequestChangesWorkflowEnabled *bool
}

// SettingsPatch carries a partial settings update. Nil fields are left
// untouched by the write.
type SettingsPatch struct {
	AutoReviewEnabled             *bool
	RequestChangesWorkflowEnabled *bool
}

// EffectiveSettings is the resolved bot configuration after applying the
// repository-over-account cascade. Every field is concrete.
type EffectiveSettings struct {
	AutoReviewEnabled             bool
	RequestChangesWorkflowEnabled bool
}
