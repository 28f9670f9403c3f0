package assistantRepository

const (
	queryGetActiveIntents = `
		SELECT
			code, name, description, tool_name, keywords, patterns,
			examples, embedding, priority, verified, is_active,
			created_at, updated_at
		FROM intent_definitions
		WHERE is_active = true
		ORDER BY priority DESC, code
	`

	queryGetIntentByCode = `
		SELECT
			code, name, description, tool_name, keywords, patterns,
			examples, embedding, priority, verified, is_active,
			created_at, updated_at
		FROM intent_definitions
		WHERE code = :code
	`

	queryCreateIntent = `
		INSERT INTO intent_definitions (
			code, name, description, tool_name, keywords, patterns,
			examples, embedding, priority, verified, is_active,
			created_at, updated_at
		) VALUES (
			:code, :name, :description, :tool_name, :keywords, :patterns,
			:examples, :embedding, :priority, :verified, :is_active,
			:created_at, :updated_at
		)
	`

	queryUpdateIntent = `
		UPDATE intent_definitions
		SET
			name = :name,
			description = :description,
			tool_name = :tool_name,
			keywords = :keywords,
			patterns = :patterns,
			examples = :examples,
			embedding = :embedding,
			priority = :priority,
			verified = :verified,
			is_active = :is_active,
			updated_at = :updated_at
		WHERE code = :code
	`

	queryGetLearnedExpressions = `
		SELECT
			id, intent_code, expression, embedding, hit_count,
			created_at, last_hit_at
		FROM learned_expressions
		ORDER BY hit_count DESC
	`

	queryGetLearnedExpressionByText = `
		SELECT
			id, intent_code, expression, embedding, hit_count,
			created_at, last_hit_at
		FROM learned_expressions
		WHERE intent_code = :intent_code
		AND expression = :expression
		LIMIT 1
	`

	queryCreateLearnedExpression = `
		INSERT INTO learned_expressions (
			id, intent_code, expression, embedding, hit_count,
			created_at, last_hit_at
		) VALUES (
			:id, :intent_code, :expression, :embedding, :hit_count,
			:created_at, :last_hit_at
		)
	`

	queryIncrementExpressionHit = `
		UPDATE learned_expressions
		SET
			hit_count = hit_count + 1,
			last_hit_at = :last_hit_at
		WHERE id = :id
	`

	queryCreateSession = `
		INSERT INTO assistant_sessions (
			id, user_id, factory_id, pending_confirmation, pending_plan,
			context, created_at, last_activity
		) VALUES (
			:id, :user_id, :factory_id, :pending_confirmation, :pending_plan,
			:context, :created_at, :last_activity
		)
	`

	queryGetSessionByUserID = `
		SELECT
			id, user_id, factory_id, pending_confirmation, pending_plan,
			context, created_at, last_activity
		FROM assistant_sessions
		WHERE user_id = :user_id
		AND last_activity >= :cutoff_time
		ORDER BY last_activity DESC
		LIMIT 1
	`

	queryUpdateSession = `
		UPDATE assistant_sessions
		SET
			pending_confirmation = :pending_confirmation,
			pending_plan = :pending_plan,
			context = :context,
			last_activity = :last_activity
		WHERE id = :id
	`

	queryDeleteOldSessions = `
		DELETE FROM assistant_sessions
		WHERE last_activity < :cutoff_time
	`

	queryCreateCommandLog = `
		INSERT INTO command_logs (
			id, user_id, factory_id, input, route_type, intent_codes,
			response, success, confidence, metadata, created_at
		) VALUES (
			:id, :user_id, :factory_id, :input, :route_type, :intent_codes,
			:response, :success, :confidence, :metadata, :created_at
		)
	`

	queryGetCommandsByUserID = `
		SELECT
			id, user_id, factory_id, input, route_type, intent_codes,
			response, success, confidence, metadata, created_at
		FROM command_logs
		WHERE user_id = :user_id
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset
	`

	queryCountCommandsByUserID = `
		SELECT COUNT(*)
		FROM command_logs
		WHERE user_id = :user_id
	`

	queryGetAnalyticsRows = `
		SELECT
			id, user_id, factory_id, input, route_type, intent_codes,
			response, success, confidence, metadata, created_at
		FROM command_logs
		WHERE factory_id = :factory_id
		AND created_at >= :start_date
		ORDER BY created_at DESC
	`

	queryCreateToolCallRecord = `
		INSERT INTO tool_call_records (
			id, session_id, tool_name, params_hash, success,
			error_msg, created_at
		) VALUES (
			:id, :session_id, :tool_name, :params_hash, :success,
			:error_msg, :created_at
		)
	`

	queryCountRecentCalls = `
		SELECT COUNT(*)
		FROM tool_call_records
		WHERE session_id = :session_id
		AND tool_name = :tool_name
		AND params_hash = :params_hash
		AND success = true
		AND created_at >= :cutoff_time
	`

	queryCreateCorrectionRecord = `
		INSERT INTO correction_records (
			id, tool_call_id, error_category, strategy,
			correction_round, success, created_at
		) VALUES (
			:id, :tool_call_id, :error_category, :strategy,
			:correction_round, :success, :created_at
		)
	`

	queryCountCorrectionRounds = `
		SELECT COUNT(*)
		FROM correction_records
		WHERE tool_call_id = :tool_call_id
	`

	queryDeleteOldToolCalls = `
		DELETE FROM tool_call_records
		WHERE created_at < :cutoff_time
	`
)
