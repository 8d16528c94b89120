package constants

// Operation names understood by the HarperDB operations API.
const (
	OpCreateSchema   = "create_schema"
	OpDropSchema     = "drop_schema"
	OpDescribeSchema = "describe_schema"
	OpCreateTable    = "create_table"
	OpDescribeTable  = "describe_table"
	OpDescribeAll    = "describe_all"
	OpDropTable      = "drop_table"
	OpDropAttribute  = "drop_attribute"

	OpInsert        = "insert"
	OpUpdate        = "update"
	OpDelete        = "delete"
	OpSearchByHash  = "search_by_hash"
	OpSearchByValue = "search_by_value"

	OpSQL = "sql"

	OpCSVDataLoad = "csv_data_load"
	OpCSVFileLoad = "csv_file_load"
	OpCSVURLLoad  = "csv_url_load"

	OpAddUser   = "add_user"
	OpAlterUser = "alter_user"
	OpDropUser  = "drop_user"
	OpUserInfo  = "user_info"
	OpListUsers = "list_users"
	OpAddRole   = "add_role"
	OpAlterRole = "alter_role"
	OpDropRole  = "drop_role"
	OpListRoles = "list_roles"

	OpAddNode       = "add_node"
	OpUpdateNode    = "update_node"
	OpRemoveNode    = "remove_node"
	OpClusterStatus = "cluster_status"

	OpRegistrationInfo = "registration_info"
	OpGetFingerprint   = "get_fingerprint"
	OpSetLicense       = "set_license"

	OpDeleteFilesBefore = "delete_files_before"
	OpExportLocal       = "export_local"
	OpExportToS3        = "export_to_s3"
	OpReadLog           = "read_log"
	OpSystemInformation = "system_information"

	OpGetJob                = "get_job"
	OpSearchJobsByStartDate = "search_jobs_by_start_date"

	OpCreateAuthenticationTokens = "create_authentication_tokens"
	OpRefreshOperationToken      = "refresh_operation_token"
)
